package model

import (
	"sort"
	"strings"
)

// Reconcile types every connection seen in any domain by how the domains
// agree on it. connections[i] and genes[i] belong to domains[i].
//
// A connection present in every domain is solid_color when reciprocal
// everywhere, dotted_color when reciprocal somewhere and dotted_grey
// otherwise. A connection missing from some domain is solid_red when it is
// reciprocal wherever it appears and both genes are members of every domain
// that lacks it; it is solid_color when reciprocal but a gene is absent from
// such a domain. Partially reciprocal and non-reciprocal connections fall back
// to dotted_color and dotted_grey.
//
// A→B and B→A are the same connection; it is emitted once, under the key that
// sorts first.
func Reconcile(domains []string, connections []Connections, genes []map[string]bool) []DomainGraphEdge {

	keys := make(map[string]bool)
	for _, conn := range connections {
		for k := range conn {
			keys[k] = true
		}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	links := make([]DomainGraphEdge, 0, len(sorted))
	emitted := make(map[string]bool, len(sorted))

	for _, key := range sorted {
		source, target, _ := strings.Cut(key, "#")
		reverse := LinkKey(target, source)
		if emitted[reverse] {
			continue
		}
		emitted[key] = true

		links = append(links, DomainGraphEdge{
			Source:   source,
			Target:   target,
			LinkType: classifyLink(source, target, len(domains), connections, genes),
		})
	}

	return links
}

func classifyLink(source, target string, n int, connections []Connections, genes []map[string]bool) LinkType {

	key, reverse := LinkKey(source, target), LinkKey(target, source)

	present := make([]bool, n)
	allPresent := true
	allRec, anyRec := true, false

	for i := 0; i < n && i < len(connections); i++ {
		for _, k := range []string{key, reverse} {
			rec, ok := connections[i][k]
			if !ok {
				continue
			}
			present[i] = true
			allRec = allRec && rec
			anyRec = anyRec || rec
		}
	}
	for _, p := range present {
		allPresent = allPresent && p
	}

	switch {
	case allPresent && allRec:
		return LinkSolidColor
	case allPresent && anyRec:
		return LinkDottedColor
	case allPresent:
		return LinkDottedGrey
	case allRec:
		if genesInMissingDomains(source, target, present, genes) {
			return LinkSolidRed
		}
		return LinkSolidColor
	case anyRec:
		return LinkDottedColor
	}
	return LinkDottedGrey
}

// genesInMissingDomains reports whether both genes belong to every domain
// where the connection is missing.
func genesInMissingDomains(source, target string, present []bool, genes []map[string]bool) bool {
	for i, p := range present {
		if p {
			continue
		}
		if i >= len(genes) || !genes[i][source] || !genes[i][target] {
			return false
		}
	}
	return true
}
