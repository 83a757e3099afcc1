package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing config, invalid paths, unknown cohort)
	ExitDataError   = 3 // Data error (malformed roster or pairs, provider failure)
	ExitStale       = 4 // Stored snapshots no longer match the pairs (build --check)

	// ASTA exit codes
	ExitASTANotFound  = 1 // Author not found in ASTA
	ExitASTAAuthError = 2 // Missing or invalid ASTA_API_KEY
	ExitASTAAPIError  = 3 // API error (rate limit, network)
)
