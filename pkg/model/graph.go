package model

import "math"

// nodeOptions selects the optional node fields.
type nodeOptions struct {
	geneType bool
	domains  bool
	// present is nil when nodes carry no is_present flag.
	present map[string]bool
}

func buildNodes(coords *Coordinates, opts nodeOptions) []GraphNode {

	var spans []int
	if opts.domains {
		for i, dc := range coords.DomainColumns {
			if dc.IsSpan() {
				spans = append(spans, i)
			}
		}
	}

	nodes := make([]GraphNode, 0, len(coords.Genes))
	for _, g := range coords.Genes {
		node := GraphNode{
			ID:          g.Name,
			GenomeName:  g.Genome,
			ProteinName: g.ProteinName,
			Direction:   g.Orientation,
			RelPosition: g.RelPosition,
		}
		if opts.geneType {
			node.GeneType = g.GeneType
		}
		if opts.present != nil {
			present := opts.present[g.Name]
			node.IsPresent = &present
		}
		for _, i := range spans {
			node.Domains = append(node.Domains, DomainValue{
				Column: coords.DomainColumns[i].Name,
				Value:  domainValue(g, i),
			})
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func domainValue(g GeneRecord, i int) float64 {
	if i < len(g.DomainValues) {
		return g.DomainValues[i]
	}
	return math.NaN()
}

// BuildGeneralGraph graphs the full gene set with the cross-genome best hits.
func BuildGeneralGraph(coords *Coordinates, hits []Hit) *Graph {

	hits = CrossGenome(hits, coords.GenomeOf())

	return &Graph{
		Genomes: nonNil(coords.Genomes()),
		Nodes:   buildNodes(coords, nodeOptions{}),
		Links:   toEdges(hits),
	}
}

// BuildDomainGraph graphs one domain. present is the gene set of the domain's
// cutoff matrix.
func BuildDomainGraph(name string, coords *Coordinates, hits []Hit, present map[string]bool) DomainGraph {

	hits = CrossGenome(hits, coords.GenomeOf())

	return DomainGraph{
		DomainName: name,
		Genomes:    nonNil(coords.Genomes()),
		Nodes:      buildNodes(coords, nodeOptions{geneType: true, domains: true, present: present}),
		Links:      toEdges(hits),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
