package model

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

type Orientation string

const (
	OrientationPlus  Orientation = "plus"
	OrientationMinus Orientation = "minus"
)

// One row of the coordinate table after cleaning.
type GeneRecord struct {
	Name        string
	Genome      string
	ProteinName string
	Position    float64
	Orientation Orientation
	GeneType    string
	RelPosition int
	// Values of the domain columns in Coordinates.DomainColumns order;
	// NaN when the cell was empty.
	DomainValues []float64
}

// DomainValue is one domain start/end cell attached to a node.
type DomainValue struct {
	Column string
	Value  float64 // NaN when missing
}

type GraphNode struct {
	ID          string
	GenomeName  string
	ProteinName string
	Direction   Orientation
	RelPosition int
	GeneType    string // omitted when empty
	IsPresent   *bool  // omitted when nil
	Domains     []DomainValue
}

// MarshalJSON flattens the domain columns into the node object, the way the
// front end expects them (e.g. "domain1_TIR_start": 12).
func (n GraphNode) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"id":           n.ID,
		"genome_name":  n.GenomeName,
		"protein_name": n.ProteinName,
		"direction":    n.Direction,
		"rel_position": n.RelPosition,
	}
	if n.GeneType != "" {
		out["gene_type"] = n.GeneType
	}
	if n.IsPresent != nil {
		out["is_present"] = *n.IsPresent
	}
	for _, d := range n.Domains {
		out[d.Column] = nullableNumber(d.Value)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a node written by MarshalJSON. Domain fields come back
// sorted by column name.
func (n *GraphNode) UnmarshalJSON(data []byte) error {

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var node GraphNode
	known := map[string]any{
		"id":           &node.ID,
		"genome_name":  &node.GenomeName,
		"protein_name": &node.ProteinName,
		"direction":    &node.Direction,
		"rel_position": &node.RelPosition,
		"gene_type":    &node.GeneType,
		"is_present":   &node.IsPresent,
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if dst, ok := known[k]; ok {
			if err := json.Unmarshal(fields[k], dst); err != nil {
				return fmt.Errorf("node field %s: %w", k, err)
			}
			continue
		}
		var v *float64
		if err := json.Unmarshal(fields[k], &v); err != nil {
			return fmt.Errorf("node field %s: %w", k, err)
		}
		value := math.NaN()
		if v != nil {
			value = *v
		}
		node.Domains = append(node.Domains, DomainValue{Column: k, Value: value})
	}

	*n = node
	return nil
}

func nullableNumber(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

type GraphEdge struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	Score        float64 `json:"score"`
	IsReciprocal bool    `json:"is_reciprocal"`
}

type LinkType string

const (
	LinkSolidColor  LinkType = "solid_color"
	LinkSolidRed    LinkType = "solid_red"
	LinkDottedColor LinkType = "dotted_color"
	LinkDottedGrey  LinkType = "dotted_grey"
)

type DomainGraphEdge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	LinkType LinkType `json:"link_type"`
}

// Graph is the general-mode output.
type Graph struct {
	Genomes []string    `json:"genomes"`
	Nodes   []GraphNode `json:"nodes"`
	Links   []GraphEdge `json:"links"`
}

// GeneralDomainName labels a general graph when it travels in a list of graphs.
const GeneralDomainName = "general"

// AsDomainGraph labels g so it can share a list with domain graphs.
func (g *Graph) AsDomainGraph(name string) DomainGraph {
	return DomainGraph{DomainName: name, Genomes: g.Genomes, Nodes: g.Nodes, Links: g.Links}
}

// DomainGraph is the graph of a single protein domain.
type DomainGraph struct {
	DomainName string      `json:"domain_name"`
	Genomes    []string    `json:"genomes"`
	Nodes      []GraphNode `json:"nodes"`
	Links      []GraphEdge `json:"links"`
}

// CombinedGraph merges all domains; its links are typed by cross-domain agreement.
type CombinedGraph struct {
	DomainName string            `json:"domain_name"`
	Genomes    []string          `json:"genomes"`
	Nodes      []GraphNode       `json:"nodes"`
	Links      []DomainGraphEdge `json:"links"`
}

const CombinedDomainName = "ALL"

type DomainResult struct {
	Domains  []DomainGraph
	Combined CombinedGraph
}

// MarshalJSON writes the per-domain graphs followed by the combined graph as
// one array.
func (r DomainResult) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(r.Domains)+1)
	for _, d := range r.Domains {
		out = append(out, d)
	}
	out = append(out, r.Combined)
	return json.Marshal(out)
}

// NumGenes counts the nodes of the combined graph.
func (r *DomainResult) NumGenes() int {
	return len(r.Combined.Nodes)
}
