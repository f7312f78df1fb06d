package model

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/genegraph/pkg/errs"
)

func upload(name, body string) Upload {
	return Upload{Filename: name, Reader: strings.NewReader(body)}
}

const domainCoords = `name,protein_name,genome,orientation,position,gene_type,domain1_TIR_start,domain1_TIR_end,domain2_NBARC_start,domain2_NBARC_end
g1,p1,A,+,100,NLR,1,50,60,200
g2,p2,A,-,"1,200",NLR,,,10,90
g3,p3,B,plus,50,TNL,5,40,,
g4,p4,B,minus,300,TNL,1,30,40,90
`

const tirMatrix = `,g1,g3,g4
g1,100,30,10
g3,30,100,5
g4,10,5,100
`

const nbarcMatrix = `,g1,g2,g3,g4
g1,100,80,20,60
g2,80,100,10,30
g3,20,10,100,40
g4,60,30,40,100
`

func TestGenerateGeneral(t *testing.T) {

	graph, err := GenerateGeneral(context.Background(),
		upload("coords.csv", basicCoords), upload("matrix.csv", basicMatrix), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, graph.Genomes)
	require.Len(t, graph.Nodes, 3)
	assert.Nil(t, graph.Nodes[0].IsPresent)
	assert.Empty(t, graph.Nodes[0].GeneType)

	assert.Equal(t, []GraphEdge{
		{Source: "g1", Target: "g3", Score: 30, IsReciprocal: true},
		{Source: "g3", Target: "g1", Score: 30, IsReciprocal: true},
	}, graph.Links)

	genomeOf := map[string]string{"g1": "A", "g2": "A", "g3": "B"}
	for _, l := range graph.Links {
		assert.NotEqual(t, genomeOf[l.Source], genomeOf[l.Target])
	}

	data, err := json.Marshal(graph)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"genomes":["A","B"]`)
	assert.Contains(t, string(data), `"rel_position":2`)
	assert.NotContains(t, string(data), "is_present")
}

func TestGenerateGeneralErrors(t *testing.T) {

	tests := []struct {
		name     string
		coords   Upload
		matrix   Upload
		wantKind errs.Kind
		wantIs   error
		wantMsg  string
	}{
		{
			name:     "unsupported extension",
			coords:   upload("coords.txt", basicCoords),
			matrix:   upload("matrix.csv", basicMatrix),
			wantKind: errs.KindFormat,
			wantIs:   errs.ErrUnsupportedFormat,
		},
		{
			name:     "unknown matrix label",
			coords:   upload("coords.csv", basicCoords),
			matrix:   upload("matrix.csv", ",g1,g9\ng1,100,40\ng9,40,100\n"),
			wantKind: errs.KindReferential,
			wantIs:   errs.ErrUnmappedIdentifiers,
			wantMsg:  "Matrix contains 1 identifiers not found in coordinate file: g9",
		},
		{
			name:     "accumulated coordinate issues",
			coords:   upload("coords.csv", "name,protein_name,genome,orientation,position\ng1,p,A,up,-1\n"),
			matrix:   upload("matrix.csv", basicMatrix),
			wantKind: errs.KindSchema,
			wantMsg:  "orientation column contains invalid values: up",
		},
		{
			name:     "matrix too small",
			coords:   upload("coords.csv", basicCoords),
			matrix:   upload("matrix.csv", ",g1\ng1,100\n"),
			wantKind: errs.KindStructural,
			wantMsg:  "Matrix must have at least 2 rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateGeneral(context.Background(), tt.coords, tt.matrix, DefaultConfig())
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, errs.KindOf(err))
			assert.True(t, errs.IsInput(err))
			if tt.wantIs != nil {
				assert.True(t, errors.Is(err, tt.wantIs))
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestGenerateGeneralPartialProcessing(t *testing.T) {

	cfg := DefaultConfig()
	cfg.AllowPartialProcessing = true

	// the empty protein name is the only issue
	coords := "name,protein_name,genome,orientation,position\ng1,,A,plus,100\ng2,p2,A,plus,200\ng3,p3,B,plus,50\n"
	graph, err := GenerateGeneral(context.Background(), upload("coords.csv", coords), upload("matrix.csv", basicMatrix), cfg)
	require.NoError(t, err)
	assert.Len(t, graph.Nodes, 3)

	_, err = GenerateGeneral(context.Background(), upload("coords.csv", coords), upload("matrix.csv", basicMatrix), DefaultConfig())
	assert.Error(t, err)
}

func generateDomain(t *testing.T, cfg Config) *DomainResult {
	t.Helper()
	// The NBARC matrix comes first on purpose; the filename index decides the order.
	result, err := GenerateDomain(context.Background(), upload("coords.csv", domainCoords), []Upload{
		upload("run_domain2_NBARC.csv", nbarcMatrix),
		upload("run_domain1_TIR.csv", tirMatrix),
	}, cfg)
	require.NoError(t, err)
	return result
}

func TestGenerateDomain(t *testing.T) {

	for _, parallel := range []bool{true, false} {
		cfg := DefaultConfig()
		cfg.ParallelDomains = parallel

		result := generateDomain(t, cfg)
		require.Len(t, result.Domains, 2)

		tir, nbarc := result.Domains[0], result.Domains[1]
		assert.Equal(t, "TIR", tir.DomainName)
		assert.Equal(t, "NBARC", nbarc.DomainName)

		assert.Equal(t, []GraphEdge{
			{Source: "g1", Target: "g3", Score: 30, IsReciprocal: true},
			{Source: "g3", Target: "g1", Score: 30, IsReciprocal: true},
		}, tir.Links)
		assert.Equal(t, []GraphEdge{
			{Source: "g1", Target: "g4", Score: 60, IsReciprocal: true},
			{Source: "g2", Target: "g4", Score: 30},
			{Source: "g4", Target: "g1", Score: 60, IsReciprocal: true},
			{Source: "g2", Target: "g4", Score: 30},
		}, nbarc.Links)

		assert.Equal(t, CombinedDomainName, result.Combined.DomainName)
		assert.Equal(t, []DomainGraphEdge{
			{Source: "g1", Target: "g3", LinkType: LinkSolidRed},
			{Source: "g1", Target: "g4", LinkType: LinkSolidRed},
			{Source: "g2", Target: "g4", LinkType: LinkDottedGrey},
		}, result.Combined.Links)
	}
}

func TestDomainPresence(t *testing.T) {

	result := generateDomain(t, DefaultConfig())

	// g2 is not a label of the TIR matrix
	for _, n := range result.Domains[0].Nodes {
		require.NotNil(t, n.IsPresent)
		assert.Equal(t, n.ID != "g2", *n.IsPresent, n.ID)
		assert.NotEmpty(t, n.GeneType)
		assert.Len(t, n.Domains, 4)
	}

	for i, n := range result.Combined.Nodes {
		require.NotNil(t, n.IsPresent)
		inAny := false
		for _, d := range result.Domains {
			inAny = inAny || *d.Nodes[i].IsPresent
		}
		assert.Equal(t, inAny, *n.IsPresent, n.ID)
	}
}

func TestDomainResultJSON(t *testing.T) {

	result := generateDomain(t, DefaultConfig())
	data, err := json.Marshal(result)
	require.NoError(t, err)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 3)
	assert.Equal(t, "TIR", out[0]["domain_name"])
	assert.Equal(t, "ALL", out[2]["domain_name"])

	nodes := out[0]["nodes"].([]any)
	g2 := nodes[1].(map[string]any)
	assert.Equal(t, "g2", g2["id"])
	assert.Equal(t, "minus", g2["direction"])
	assert.Equal(t, float64(2), g2["rel_position"])
	assert.Nil(t, g2["domain1_TIR_start"])
	assert.Contains(t, g2, "domain1_TIR_start")
	assert.Equal(t, float64(10), g2["domain2_NBARC_start"])

	links := out[2]["links"].([]any)
	assert.Equal(t, "solid_red", links[0].(map[string]any)["link_type"])
}

func TestGenerateDomainErrors(t *testing.T) {

	_, err := GenerateDomain(context.Background(), upload("coords.csv", domainCoords),
		[]Upload{upload("run_domain1_TIR.csv", tirMatrix)}, DefaultConfig())
	require.Error(t, err)
	assert.Equal(t, errs.KindStructural, errs.KindOf(err))

	_, err = GenerateDomain(context.Background(), upload("coords.csv", domainCoords), []Upload{
		upload("run_domain1_TIR.csv", tirMatrix),
		upload("run_domain2_NBARC.csv", ",g1,g9\ng1,100,50\ng9,50,100\n"),
	}, DefaultConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUnmappedIdentifiers))
	assert.Contains(t, err.Error(), "Matrix file for domain NBARC")

	_, err = GenerateDomain(context.Background(), upload("coords.csv", basicCoords), []Upload{
		upload("run_domain1_TIR.csv", tirMatrix),
		upload("run_domain2_NBARC.csv", nbarcMatrix),
	}, DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gene_type")
}

func TestGenerateDomainCancelled(t *testing.T) {

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := DefaultConfig()
	cfg.ParallelDomains = false
	_, err := GenerateDomain(ctx, upload("coords.csv", domainCoords), []Upload{
		upload("run_domain1_TIR.csv", tirMatrix),
		upload("run_domain2_NBARC.csv", nbarcMatrix),
	}, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}
