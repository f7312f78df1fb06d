package model

import (
	"math"
)

// ReciprocalCell marks whether a surviving cell is the maximum of its row
// within the column's genome and of its column within the row's genome.
type ReciprocalCell struct {
	RowMax bool
	ColMax bool
}

// Hit is a classified best-hit cell.
type Hit struct {
	Source     string
	Target     string
	Score      float64
	Reciprocal bool
}

// Key is the "source#target" identifier used to compare hits across domains.
func (h Hit) Key() string {
	return LinkKey(h.Source, h.Target)
}

func LinkKey(source, target string) string {
	return source + "#" + target
}

// Classify computes the per-genome maxima of m. Column maxima are taken over
// the cells of one column grouped by the genome of their row label, row
// maxima over the cells of one row grouped by the genome of their column
// label. Every cell equal to its group maximum counts. A label without a
// genome in genomeOf joins no partition, so its cells never win along that
// axis.
func Classify(m *CutoffMatrix, genomeOf map[string]string) [][]ReciprocalCell {

	rowGenome := make([]string, len(m.Rows))
	rowKnown := make([]bool, len(m.Rows))
	for i, r := range m.Rows {
		rowGenome[i], rowKnown[i] = genomeOf[r]
	}
	colGenome := make([]string, len(m.Cols))
	colKnown := make([]bool, len(m.Cols))
	for j, c := range m.Cols {
		colGenome[j], colKnown[j] = genomeOf[c]
	}

	cells := make([][]ReciprocalCell, len(m.Rows))
	for i := range cells {
		cells[i] = make([]ReciprocalCell, len(m.Cols))
	}

	// column max per row-genome
	for j := range m.Cols {
		best := make(map[string]float64)
		for i := range m.Rows {
			if !rowKnown[i] || !m.Has(i, j) {
				continue
			}
			v := m.Values[i][j]
			if cur, ok := best[rowGenome[i]]; !ok || v > cur {
				best[rowGenome[i]] = v
			}
		}
		for i := range m.Rows {
			if rowKnown[i] && m.Has(i, j) && m.Values[i][j] == best[rowGenome[i]] {
				cells[i][j].ColMax = true
			}
		}
	}

	// row max per column-genome
	for i := range m.Rows {
		best := make(map[string]float64)
		for j := range m.Cols {
			if !colKnown[j] || !m.Has(i, j) {
				continue
			}
			v := m.Values[i][j]
			if cur, ok := best[colGenome[j]]; !ok || v > cur {
				best[colGenome[j]] = v
			}
		}
		for j := range m.Cols {
			if colKnown[j] && m.Has(i, j) && m.Values[i][j] == best[colGenome[j]] {
				cells[i][j].RowMax = true
			}
		}
	}

	return cells
}

// FindBestHits classifies every surviving cell in row-major order:
// row and column max is a reciprocal hit row->col, row max only is row->col,
// column max only is col->row, anything else is dropped.
func FindBestHits(m *CutoffMatrix, genomeOf map[string]string) []Hit {

	cells := Classify(m, genomeOf)
	var hits []Hit

	for i, row := range m.Rows {
		for j, col := range m.Cols {
			c := cells[i][j]
			hit := Hit{Score: m.Values[i][j]}
			switch {
			case c.RowMax && c.ColMax:
				hit.Source, hit.Target, hit.Reciprocal = row, col, true
			case c.RowMax:
				hit.Source, hit.Target = row, col
			case c.ColMax:
				hit.Source, hit.Target = col, row
			default:
				continue
			}
			hits = append(hits, hit)
		}
	}

	return hits
}

// CrossGenome drops hits whose endpoints belong to the same genome.
// Unknown genes count as one shared "unknown" genome.
func CrossGenome(hits []Hit, genomeOf map[string]string) []Hit {
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		if genomeOf[h.Source] == genomeOf[h.Target] {
			continue
		}
		out = append(out, h)
	}
	return out
}

// Connections is the "source#target" -> reciprocal map of one domain.
// A later hit with the same key overwrites an earlier one.
type Connections map[string]bool

func NewConnections(hits []Hit) Connections {
	c := make(Connections, len(hits))
	for _, h := range hits {
		c[h.Key()] = h.Reciprocal
	}
	return c
}

func toEdges(hits []Hit) []GraphEdge {
	edges := make([]GraphEdge, 0, len(hits))
	for _, h := range hits {
		if math.IsNaN(h.Score) {
			continue
		}
		edges = append(edges, GraphEdge{
			Source:       h.Source,
			Target:       h.Target,
			Score:        h.Score,
			IsReciprocal: h.Reciprocal,
		})
	}
	return edges
}
