// Package scrape collects co-authorship records for roster scholars.
//
// Scraping is strictly sequential with a fixed pause between requests and a
// single retry pass over failures. There is no backoff and no parallelism.
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/matsen/scholarnet/internal/asta"
	"github.com/matsen/scholarnet/internal/coauthor"
	"github.com/matsen/scholarnet/internal/logging"
	"github.com/matsen/scholarnet/internal/scholar"
)

// DefaultDelay is the pause between consecutive fetches.
const DefaultDelay = 5 * time.Second

// Fetcher lists a scholar's papers. *asta.Client implements it.
type Fetcher interface {
	GetAuthorPapers(ctx context.Context, authorID string, limit int) (*asta.AuthorPapersResponse, error)
}

// Sink receives the records for one scholar at a time.
type Sink interface {
	Write(records []coauthor.Record) error
}

// Scraper fetches papers for each scholar and writes one record per co-author.
type Scraper struct {
	Fetcher Fetcher
	Sink    Sink
	Delay   time.Duration // pause between fetches; zero disables it
	Limit   int           // papers per scholar; zero uses the fetcher default
	Retry   bool          // one retry pass over failed scholars
	Logger  *slog.Logger

	calls int
}

// Result summarizes a run. Names are roster display names.
type Result struct {
	Scraped int      `json:"scraped"`
	Records int      `json:"records"`
	Failed  []string `json:"failed"`
	Skipped []string `json:"skipped"` // no scholar ID
}

type failure struct {
	scholar scholar.Scholar
	err     error
}

// Run scrapes scholars in order. It stops early on cancellation or an
// authentication failure; other per-scholar errors end up in Result.Failed.
func (s *Scraper) Run(ctx context.Context, scholars []scholar.Scholar) (Result, error) {
	log := logging.OrDiscard(s.Logger)
	res := Result{Failed: []string{}, Skipped: []string{}}
	s.calls = 0

	var todo []scholar.Scholar
	for _, sc := range scholars {
		if sc.ID == "" {
			log.Debug("skipping scholar without id", "name", sc.Name)
			res.Skipped = append(res.Skipped, sc.Name)
			continue
		}
		todo = append(todo, sc)
	}

	failed, err := s.pass(ctx, todo, &res)
	if err != nil {
		return res, err
	}

	if s.Retry && len(failed) > 0 {
		var retry []scholar.Scholar
		for _, f := range failed {
			if asta.IsRetryable(f.err) {
				retry = append(retry, f.scholar)
			} else {
				res.Failed = append(res.Failed, f.scholar.Name)
			}
		}
		if len(retry) > 0 {
			log.Info("retrying failed scholars", "count", len(retry))
		}
		failed, err = s.pass(ctx, retry, &res)
		if err != nil {
			return res, err
		}
	}

	for _, f := range failed {
		res.Failed = append(res.Failed, f.scholar.Name)
	}
	return res, nil
}

func (s *Scraper) pass(ctx context.Context, batch []scholar.Scholar, res *Result) ([]failure, error) {
	log := logging.OrDiscard(s.Logger)

	var failed []failure
	for _, sc := range batch {
		if s.calls > 0 {
			if err := sleep(ctx, s.Delay); err != nil {
				return nil, err
			}
		}
		s.calls++

		n, err := s.scrapeOne(ctx, sc)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if asta.IsAuthError(err) {
				return nil, fmt.Errorf("scraping %s: %w", sc.Name, err)
			}
			log.Warn("scrape failed", "name", sc.Name, "id", sc.ID, "error", err)
			failed = append(failed, failure{scholar: sc, err: err})
			continue
		}

		log.Info("scraped", "name", sc.Name, "id", sc.ID, "records", n)
		res.Scraped++
		res.Records += n
	}
	return failed, nil
}

// scrapeOne fetches one scholar's papers and writes their co-author records.
func (s *Scraper) scrapeOne(ctx context.Context, sc scholar.Scholar) (int, error) {
	resp, err := s.Fetcher.GetAuthorPapers(ctx, sc.ID, s.Limit)
	if err != nil {
		return 0, err
	}

	records := Records(sc, resp.Papers)
	if len(records) == 0 {
		return 0, nil
	}
	if err := s.Sink.Write(records); err != nil {
		return 0, fmt.Errorf("writing records: %w", err)
	}
	return len(records), nil
}

// Records turns a scholar's papers into co-author records. The scholar is
// recognized on each author list by ID, so their spelling there is never
// taken for a collaborator.
func Records(sc scholar.Scholar, papers []asta.Paper) []coauthor.Record {
	var out []coauthor.Record
	for _, p := range papers {
		var names []string
		for _, a := range p.Authors {
			if a.Name == "" || (sc.ID != "" && a.AuthorID == sc.ID) {
				continue
			}
			names = append(names, a.Name)
		}
		for _, r := range coauthor.FromPaper(sc.Name, names, p.PaperID, p.Title, p.Year) {
			r.Source = sc.ID
			out = append(out, r)
		}
	}
	return coauthor.Dedupe(out)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
