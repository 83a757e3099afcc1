package viz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
)

// compiledTemplates are parsed at init time to fail fast on template errors.
var (
	dashboardTemplate *template.Template
	figureTemplate    *template.Template
)

func init() {
	dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))
	figureTemplate = template.Must(template.New("figure").Parse(figureHTML))
}

// DefaultPlotlyURL is the plotly.js bundle loaded by generated pages.
const DefaultPlotlyURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

// CohortTab is one selectable cohort on the dashboard.
type CohortTab struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// DashboardOptions configures the dashboard page.
type DashboardOptions struct {
	Title         string
	PlotlyURL     string // empty uses DefaultPlotlyURL
	APIBase       string // prefix for /api routes, usually empty
	Cohorts       []CohortTab
	DefaultCohort string
}

// HTMLOptions configures a standalone figure page.
type HTMLOptions struct {
	PlotlyURL string
}

// GenerateDashboardHTML renders the interactive dashboard page. The page
// loads scholar options and figures from the JSON API.
func GenerateDashboardHTML(o DashboardOptions) (string, error) {
	if len(o.Cohorts) == 0 {
		return "", fmt.Errorf("dashboard needs at least one cohort")
	}
	if o.Title == "" {
		o.Title = "Scholar Network"
	}
	if o.PlotlyURL == "" {
		o.PlotlyURL = DefaultPlotlyURL
	}
	if o.DefaultCohort == "" {
		o.DefaultCohort = o.Cohorts[0].Name
	}

	found := false
	for _, c := range o.Cohorts {
		if c.Name == o.DefaultCohort {
			found = true
			break
		}
	}
	if !found {
		return "", fmt.Errorf("default cohort %q is not among the dashboard cohorts", o.DefaultCohort)
	}

	cohortsJSON, err := json.Marshal(o.Cohorts)
	if err != nil {
		return "", err
	}

	data := dashboardData{
		Title:         o.Title,
		PlotlyURL:     o.PlotlyURL,
		APIBase:       o.APIBase,
		Cohorts:       o.Cohorts,
		CohortsJSON:   template.JS(cohortsJSON),
		DefaultCohort: o.DefaultCohort,
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// GenerateHTML renders a self-contained page showing one figure.
func GenerateHTML(fig *Figure, o HTMLOptions) (string, error) {
	if fig == nil {
		return "", fmt.Errorf("figure cannot be nil")
	}
	if o.PlotlyURL == "" {
		o.PlotlyURL = DefaultPlotlyURL
	}

	if fig.IsEmpty() {
		return generateEmptyHTML(fig.Title), nil
	}

	figJSON, err := json.Marshal(fig)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = figureTemplate.Execute(&buf, figureData{
		Title:      fig.Title,
		PlotlyURL:  o.PlotlyURL,
		FigureJSON: template.JS(figJSON),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

type dashboardData struct {
	Title         string
	PlotlyURL     string
	APIBase       string
	Cohorts       []CohortTab
	CohortsJSON   template.JS
	DefaultCohort string
}

type figureData struct {
	Title      string
	PlotlyURL  string
	FigureJSON template.JS
}

// generateEmptyHTML returns HTML for a figure with no nodes.
func generateEmptyHTML(title string) string {
	return `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>` + template.HTMLEscapeString(title) + ` - Empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #f5f5f5;
    }
    .empty-state {
      text-align: center;
      color: #666;
    }
    .empty-state code {
      background: #e0e0e0;
      padding: 2px 6px;
      border-radius: 3px;
    }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No co-authorship data</h2>
    <p>Nothing matched this selection.</p>
    <p>Collect pairs with <code>snet scrape</code> and run <code>snet rebuild</code></p>
  </div>
</body>
</html>`
}

const figureHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="{{.PlotlyURL}}"></script>
  <style>
    body { margin: 0; background: white; }
    #graph { width: 100vw; height: 100vh; }
  </style>
</head>
<body>
  <div id="graph"></div>
  <script>
    const fig = {{.FigureJSON}};
    Plotly.newPlot('graph', fig.data, fig.layout, {responsive: true});
  </script>
</body>
</html>`

const dashboardHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="{{.PlotlyURL}}"></script>
  <style>
    * {
      box-sizing: border-box;
    }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      padding: 0 1em;
      background: #f5f5f5;
    }
    header h1 {
      font-size: 1.4em;
      margin: 0.6em 0;
    }
    .tabs button {
      border: 1px solid #ccc;
      background: white;
      padding: 6px 14px;
      cursor: pointer;
    }
    .tabs button.active {
      background: #4A90D9;
      color: white;
      border-color: #4A90D9;
    }
    .controls {
      display: flex;
      gap: 1em;
      margin: 0.8em 0;
    }
    .controls select {
      min-width: 260px;
      padding: 4px;
    }
    #status {
      color: #a33;
      min-height: 1.2em;
    }
    #graph {
      width: 100%;
      height: 80vh;
      background: white;
    }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    <div class="tabs">
      {{range .Cohorts}}<button data-cohort="{{.Name}}">{{if .Title}}{{.Title}}{{else}}{{.Name}}{{end}}</button>
      {{end}}
    </div>
  </header>
  <div class="controls">
    <select id="author1"></select>
    <select id="author2"></select>
  </div>
  <div id="status"></div>
  <div id="graph"></div>
  <script>
    (function() {
      const api = "{{.APIBase}}";
      const cohorts = {{.CohortsJSON}};
      let cohort = "{{.DefaultCohort}}";

      const a1 = document.getElementById('author1');
      const a2 = document.getElementById('author2');
      const status = document.getElementById('status');

      async function getJSON(path, params) {
        const q = new URLSearchParams(params);
        const resp = await fetch(api + path + '?' + q.toString());
        const body = await resp.json();
        if (!resp.ok) {
          throw new Error(body.error || resp.statusText);
        }
        return body;
      }

      function fillSelect(sel, options, keep) {
        sel.innerHTML = '';
        const blank = document.createElement('option');
        blank.value = '';
        blank.textContent = 'Select an author...';
        sel.appendChild(blank);
        for (const o of options) {
          const opt = document.createElement('option');
          opt.value = o.value;
          opt.textContent = o.label;
          sel.appendChild(opt);
        }
        sel.value = keep || '';
      }

      async function refreshOptions() {
        const [o1, o2] = await Promise.all([
          getJSON('/api/scholars', {cohort: cohort, exclude: a2.value}),
          getJSON('/api/scholars', {cohort: cohort, exclude: a1.value}),
        ]);
        fillSelect(a1, o1, a1.value);
        fillSelect(a2, o2, a2.value);
      }

      async function draw() {
        status.textContent = '';
        try {
          const fig = await getJSON('/api/figure', {
            cohort: cohort, author1: a1.value, author2: a2.value,
          });
          Plotly.react('graph', fig.data, fig.layout, {responsive: true});
        } catch (err) {
          status.textContent = err.message;
        }
      }

      function selectCohort(name) {
        cohort = name;
        document.querySelectorAll('.tabs button').forEach(b => {
          b.classList.toggle('active', b.dataset.cohort === name);
        });
        a1.value = '';
        a2.value = '';
        refreshOptions().then(draw).catch(err => { status.textContent = err.message; });
      }

      document.querySelectorAll('.tabs button').forEach(b => {
        b.addEventListener('click', () => selectCohort(b.dataset.cohort));
      });
      a1.addEventListener('change', () => refreshOptions().then(draw));
      a2.addEventListener('change', () => refreshOptions().then(draw));

      if (cohorts.length > 0) {
        selectCohort(cohort);
      }
    })();
  </script>
</body>
</html>`
