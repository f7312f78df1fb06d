package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/genegraph/pkg/model"
)

const coordsCSV = `name,protein_name,genome,orientation,position,gene_type,domain1_TIR_start,domain1_TIR_end,domain2_NBARC_start,domain2_NBARC_end
g1,p1,A,+,100,NLR,1,50,60,200
g2,p2,A,-,200,NLR,,,10,90
g3,p3,B,plus,50,TNL,5,40,,
g4,p4,B,minus,300,TNL,1,30,40,90
`

const tirCSV = `,g1,g3,g4
g1,100,30,10
g3,30,100,5
g4,10,5,100
`

const nbarcCSV = `,g1,g2,g3,g4
g1,100,80,20,60
g2,80,100,10,30
g3,20,10,100,40
g4,60,30,40,100
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGeneralCommand(t *testing.T) {

	dir := t.TempDir()
	coords := writeFile(t, dir, "coords.csv", coordsCSV)
	matrix := writeFile(t, dir, "matrix.csv", tirCSV)

	out, err := run(t, "general", "--coords", coords, "--matrix", matrix)
	require.NoError(t, err)

	var graph model.Graph
	require.NoError(t, json.Unmarshal([]byte(out), &graph))
	assert.Equal(t, []string{"A", "B"}, graph.Genomes)
	assert.Len(t, graph.Nodes, 4)
	assert.Equal(t, []model.GraphEdge{
		{Source: "g1", Target: "g3", Score: 30, IsReciprocal: true},
		{Source: "g3", Target: "g1", Score: 30, IsReciprocal: true},
	}, graph.Links)
}

func TestDomainCommandWritesFile(t *testing.T) {

	dir := t.TempDir()
	coords := writeFile(t, dir, "coords.csv", coordsCSV)
	nbarc := writeFile(t, dir, "run_domain2_NBARC.csv", nbarcCSV)
	tir := writeFile(t, dir, "run_domain1_TIR.csv", tirCSV)
	output := filepath.Join(dir, "graphs.json")

	out, err := run(t, "domain", "-c", coords, "-m", nbarc, "-m", tir, "-o", output, "--parallel=false")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var parts []map[string]any
	require.NoError(t, json.Unmarshal(data, &parts))
	require.Len(t, parts, 3)
	assert.Equal(t, "TIR", parts[0]["domain_name"])
	assert.Equal(t, "NBARC", parts[1]["domain_name"])
	assert.Equal(t, "ALL", parts[2]["domain_name"])
}

func TestCommandErrors(t *testing.T) {

	dir := t.TempDir()
	coords := writeFile(t, dir, "coords.csv", coordsCSV)
	matrix := writeFile(t, dir, "matrix.csv", tirCSV)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing coords", []string{"general", "--matrix", matrix}, "coords"},
		{"two general matrices", []string{"general", "-c", coords, "-m", matrix, "-m", matrix}, "exactly one --matrix"},
		{"missing file", []string{"general", "-c", filepath.Join(dir, "nope.csv"), "-m", matrix}, "nope.csv"},
		{"one domain", []string{"domain", "-c", coords, "-m", matrix}, "Domain-specific graphs need 2 to 3 matrix files"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestVersionCommand(t *testing.T) {

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "genegraph dev\n", out)
}
