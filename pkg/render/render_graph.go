package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/yumyai/genegraph/logger"
	"github.com/yumyai/genegraph/pkg/db"
	"github.com/yumyai/genegraph/pkg/model"
)

var (
	graphPageTemplate *template.Template
	indexPageTemplate *template.Template
)

// LinkCount is one row of the link-type breakdown of a combined graph.
type LinkCount struct {
	Type  model.LinkType
	Count int
	Color string
}

// GraphSection summarises one graph of a stored result.
type GraphSection struct {
	Name       string
	NumNodes   int
	NumPresent int
	NumLinks   int
	NumRecip   int
	LinkCounts []LinkCount
}

// GraphPageData is what the graph page shows for a stored graph.
type GraphPageData struct {
	Graph    *db.StoredGraph
	Sections []GraphSection
}

// IndexPageData lists the most recent graphs.
type IndexPageData struct {
	Graphs []*db.StoredGraph
}

var linkColors = map[model.LinkType]string{
	model.LinkSolidColor:  "#1F77B4",
	model.LinkSolidRed:    "#D62728",
	model.LinkDottedColor: "#9467BD",
	model.LinkDottedGrey:  "#8B8989",
}

func init() {
	funcs := template.FuncMap{
		"date": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
		"mode": func(domain bool) string {
			if domain {
				return "domain-specific"
			}
			return "general"
		},
	}

	graphTmpl := `
	<!DOCTYPE html>
	<html>
	<head>
		<title>{{ if .Graph.Title }}{{ .Graph.Title }}{{ else }}Graph {{ .Graph.ID }}{{ end }}</title>
	</head>
	<body>
		<header class="app-header">
			<h1 class="app-name">Gene Graph</h1>
			<p><a href="/">All graphs</a></p>
		</header>
		<p><strong>Graph ID:</strong> {{ .Graph.ID }}</p>
		<p><strong>Mode:</strong> {{ mode .Graph.IsDomainSpecific }}</p>
		<p><strong>Created:</strong> {{ date .Graph.CreatedAt }}</p>
		<p><strong>Genes:</strong> {{ .Graph.NumGenes }} &middot; <strong>Genomes:</strong> {{ range $i, $g := .Graph.Genomes }}{{ if $i }}, {{ end }}{{ $g }}{{ end }}</p>
		<p><a href="/api/v1/graph/{{ .Graph.ID }}">Download JSON</a></p>
		{{ range .Sections }}
		<section class="graph-section">
			<h2>{{ .Name }}</h2>
			<p>{{ .NumNodes }} nodes ({{ .NumPresent }} present), {{ .NumLinks }} links{{ if .NumRecip }}, {{ .NumRecip }} reciprocal{{ end }}</p>
			{{ if .LinkCounts }}
			<table>
				<tr><th>Link type</th><th>Count</th></tr>
				{{ range .LinkCounts }}
				<tr><td style="color: {{ .Color }};">{{ .Type }}</td><td>{{ .Count }}</td></tr>
				{{ end }}
			</table>
			{{ end }}
		</section>
		{{ end }}
	</body>
	</html>`

	indexTmpl := `
	<!DOCTYPE html>
	<html>
	<head>
		<title>Gene Graph</title>
	</head>
	<body>
		<header class="app-header">
			<h1 class="app-name">Gene Graph</h1>
			<p class="app-description">Best reciprocal hit graphs between genomes.</p>
		</header>
		{{ if .Graphs }}
		<table>
			<tr><th>Title</th><th>Mode</th><th>Genes</th><th>Domains</th><th>Created</th></tr>
			{{ range .Graphs }}
			<tr>
				<td><a href="/graph/{{ .ID }}">{{ if .Title }}{{ .Title }}{{ else }}{{ .ID }}{{ end }}</a></td>
				<td>{{ mode .IsDomainSpecific }}</td>
				<td>{{ .NumGenes }}</td>
				<td>{{ .NumDomains }}</td>
				<td>{{ date .CreatedAt }}</td>
			</tr>
			{{ end }}
		</table>
		{{ else }}
		<p>No graphs yet. POST files to /api/v1/graph to create one.</p>
		{{ end }}
	</body>
	</html>`

	graphPageTemplate = template.Must(template.New("graph_page").Funcs(funcs).Parse(graphTmpl))
	indexPageTemplate = template.Must(template.New("index_page").Funcs(funcs).Parse(indexTmpl))
}

// NewGraphPageData decodes the stored payload into per-graph summaries. The
// payload is an array of graphs; in domain mode the last one is the combined
// graph.
func NewGraphPageData(g *db.StoredGraph) (GraphPageData, error) {

	data := GraphPageData{Graph: g}

	var parts []json.RawMessage
	if err := json.Unmarshal(g.Payload, &parts); err != nil {
		return data, fmt.Errorf("decode graphs of %s: %w", g.ID, err)
	}

	for i, part := range parts {
		if g.IsDomainSpecific && i == len(parts)-1 {
			var combined model.CombinedGraph
			if err := json.Unmarshal(part, &combined); err != nil {
				return data, fmt.Errorf("decode combined graph of %s: %w", g.ID, err)
			}
			data.Sections = append(data.Sections, summariseCombined(combined))
			continue
		}
		var dg model.DomainGraph
		if err := json.Unmarshal(part, &dg); err != nil {
			return data, fmt.Errorf("decode graph %d of %s: %w", i, g.ID, err)
		}
		data.Sections = append(data.Sections, summarise(dg.DomainName, dg.Nodes, dg.Links))
	}

	return data, nil
}

func summarise(name string, nodes []model.GraphNode, links []model.GraphEdge) GraphSection {
	s := GraphSection{Name: name, NumNodes: len(nodes), NumLinks: len(links)}
	s.NumPresent = countPresent(nodes)
	for _, l := range links {
		if l.IsReciprocal {
			s.NumRecip++
		}
	}
	return s
}

func summariseCombined(g model.CombinedGraph) GraphSection {
	s := GraphSection{Name: g.DomainName, NumNodes: len(g.Nodes), NumLinks: len(g.Links)}
	s.NumPresent = countPresent(g.Nodes)

	counts := make(map[model.LinkType]int)
	for _, l := range g.Links {
		counts[l.LinkType]++
	}
	for _, lt := range []model.LinkType{model.LinkSolidColor, model.LinkSolidRed, model.LinkDottedColor, model.LinkDottedGrey} {
		if counts[lt] > 0 {
			s.LinkCounts = append(s.LinkCounts, LinkCount{Type: lt, Count: counts[lt], Color: linkColors[lt]})
		}
	}
	return s
}

// Nodes without a presence flag count as present.
func countPresent(nodes []model.GraphNode) int {
	n := 0
	for _, node := range nodes {
		if node.IsPresent == nil || *node.IsPresent {
			n++
		}
	}
	return n
}

func RenderGraphPage(w io.Writer, data GraphPageData) error {
	logger.Debug("Rendering graph page", zap.String("graph_id", data.Graph.ID), zap.Int("sections", len(data.Sections)))
	return graphPageTemplate.Execute(w, data)
}

func RenderIndexPage(w io.Writer, data IndexPageData) error {
	return indexPageTemplate.Execute(w, data)
}
