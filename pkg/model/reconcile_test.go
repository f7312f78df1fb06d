package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genes(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func TestReconcileLinkTypes(t *testing.T) {

	tests := []struct {
		name        string
		connections []Connections
		genes       []map[string]bool
		want        LinkType
	}{
		{
			name:        "reciprocal in one domain, genes present in the other",
			connections: []Connections{{"A#B": true}, {}},
			genes:       []map[string]bool{genes("A", "B"), genes("A", "B")},
			want:        LinkSolidRed,
		},
		{
			name:        "reciprocal in one domain, gene absent from the other",
			connections: []Connections{{"A#B": true}, {}},
			genes:       []map[string]bool{genes("A", "B"), genes("A")},
			want:        LinkSolidColor,
		},
		{
			name:        "reciprocal everywhere, reverse direction in one domain",
			connections: []Connections{{"A#B": true}, {"B#A": true}},
			genes:       []map[string]bool{genes("A", "B"), genes("A", "B")},
			want:        LinkSolidColor,
		},
		{
			name:        "present everywhere, reciprocal in one",
			connections: []Connections{{"A#B": true}, {"A#B": false}},
			genes:       []map[string]bool{genes("A", "B"), genes("A", "B")},
			want:        LinkDottedColor,
		},
		{
			name:        "present everywhere, never reciprocal",
			connections: []Connections{{"A#B": false}, {"B#A": false}},
			genes:       []map[string]bool{genes("A", "B"), genes("A", "B")},
			want:        LinkDottedGrey,
		},
		{
			name:        "partially present, never reciprocal",
			connections: []Connections{{"A#B": false}, {}},
			genes:       []map[string]bool{genes("A", "B"), genes("A", "B")},
			want:        LinkDottedGrey,
		},
		{
			name:        "partially present, partially reciprocal",
			connections: []Connections{{"A#B": true}, {"A#B": false}, {}},
			genes:       []map[string]bool{genes("A", "B"), genes("A", "B"), genes("A", "B")},
			want:        LinkDottedColor,
		},
		{
			name:        "three domains, genes missing in one of two gaps",
			connections: []Connections{{"A#B": true}, {}, {}},
			genes:       []map[string]bool{genes("A", "B"), genes("A", "B"), genes("B")},
			want:        LinkSolidColor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			domains := make([]string, len(tt.connections))
			for i := range domains {
				domains[i] = string(rune('X' + i))
			}
			links := Reconcile(domains, tt.connections, tt.genes)
			require.Len(t, links, 1)
			assert.Equal(t, "A", links[0].Source)
			assert.Equal(t, "B", links[0].Target)
			assert.Equal(t, tt.want, links[0].LinkType)
		})
	}
}

func TestReconcileEmitsEachPairOnce(t *testing.T) {

	connections := []Connections{
		{"B#A": true, "A#B": true, "C#D": false},
		{"D#C": true},
	}
	all := genes("A", "B", "C", "D")

	links := Reconcile([]string{"d1", "d2"}, connections, []map[string]bool{all, all})
	assert.Equal(t, []DomainGraphEdge{
		{Source: "A", Target: "B", LinkType: LinkSolidRed},
		{Source: "C", Target: "D", LinkType: LinkDottedColor},
	}, links)
}

func TestReconcileEmpty(t *testing.T) {
	links := Reconcile([]string{"d1", "d2"}, []Connections{{}, {}}, []map[string]bool{{}, {}})
	assert.NotNil(t, links)
	assert.Empty(t, links)
}
