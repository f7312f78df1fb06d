package render

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/genegraph/pkg/db"
	"github.com/yumyai/genegraph/pkg/model"
)

func boolPtr(b bool) *bool { return &b }

func domainPayload(t *testing.T) json.RawMessage {
	t.Helper()

	nodes := []model.GraphNode{
		{ID: "g1", GenomeName: "A", IsPresent: boolPtr(true)},
		{ID: "g2", GenomeName: "B", IsPresent: boolPtr(false)},
	}
	result := model.DomainResult{
		Domains: []model.DomainGraph{{
			DomainName: "TIR",
			Genomes:    []string{"A", "B"},
			Nodes:      nodes,
			Links:      []model.GraphEdge{{Source: "g1", Target: "g2", Score: 40, IsReciprocal: true}},
		}},
		Combined: model.CombinedGraph{
			DomainName: "ALL",
			Genomes:    []string{"A", "B"},
			Nodes:      nodes,
			Links: []model.DomainGraphEdge{
				{Source: "g1", Target: "g2", LinkType: model.LinkSolidRed},
				{Source: "g2", Target: "g3", LinkType: model.LinkDottedGrey},
				{Source: "g1", Target: "g3", LinkType: model.LinkDottedGrey},
			},
		},
	}
	data, err := json.Marshal(result)
	require.NoError(t, err)
	return data
}

func TestNewGraphPageDataDomain(t *testing.T) {

	g := &db.StoredGraph{ID: "x", IsDomainSpecific: true, Payload: domainPayload(t)}

	data, err := NewGraphPageData(g)
	require.NoError(t, err)
	require.Len(t, data.Sections, 2)

	assert.Equal(t, GraphSection{Name: "TIR", NumNodes: 2, NumPresent: 1, NumLinks: 1, NumRecip: 1}, data.Sections[0])

	all := data.Sections[1]
	assert.Equal(t, "ALL", all.Name)
	assert.Equal(t, []LinkCount{
		{Type: model.LinkSolidRed, Count: 1, Color: "#D62728"},
		{Type: model.LinkDottedGrey, Count: 2, Color: "#8B8989"},
	}, all.LinkCounts)
}

func TestNewGraphPageDataGeneral(t *testing.T) {

	graph := model.Graph{
		Genomes: []string{"A"},
		Nodes:   []model.GraphNode{{ID: "g1", GenomeName: "A"}},
		Links:   []model.GraphEdge{},
	}
	payload, err := json.Marshal([]model.DomainGraph{graph.AsDomainGraph(model.GeneralDomainName)})
	require.NoError(t, err)

	data, err := NewGraphPageData(&db.StoredGraph{ID: "y", Payload: payload})
	require.NoError(t, err)
	require.Len(t, data.Sections, 1)
	assert.Equal(t, "general", data.Sections[0].Name)
	assert.Equal(t, 1, data.Sections[0].NumPresent)
	assert.Empty(t, data.Sections[0].LinkCounts)
}

func TestNewGraphPageDataBadPayload(t *testing.T) {

	_, err := NewGraphPageData(&db.StoredGraph{ID: "z", Payload: json.RawMessage(`{"not":"an array"}`)})
	assert.Error(t, err)
}

func TestRenderPages(t *testing.T) {

	g := &db.StoredGraph{
		ID:               "abc",
		Title:            "<NLR>",
		IsDomainSpecific: true,
		NumGenes:         2,
		Genomes:          []string{"A", "B"},
		CreatedAt:        time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		Payload:          domainPayload(t),
	}
	data, err := NewGraphPageData(g)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderGraphPage(&buf, data))
	page := buf.String()
	assert.Contains(t, page, "&lt;NLR&gt;")
	assert.Contains(t, page, "domain-specific")
	assert.Contains(t, page, "2024-05-01 10:30")
	assert.Contains(t, page, "solid_red")
	assert.Contains(t, page, "/api/v1/graph/abc")

	buf.Reset()
	require.NoError(t, RenderIndexPage(&buf, IndexPageData{Graphs: []*db.StoredGraph{g}}))
	assert.Contains(t, buf.String(), `href="/graph/abc"`)

	buf.Reset()
	require.NoError(t, RenderIndexPage(&buf, IndexPageData{}))
	assert.Contains(t, buf.String(), "No graphs yet")
}
