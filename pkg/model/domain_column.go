package model

import (
	"fmt"
	"strings"

	"github.com/yumyai/genegraph/pkg/errs"
)

type DomainColumnType string

const (
	DomainStart DomainColumnType = "start"
	DomainEnd   DomainColumnType = "end"
	DomainFlag  DomainColumnType = "NA"
)

// DomainColumn is a coordinate column following the domain<N>_<NAME>_<start|end>
// convention. Columns without start/end are presence flags.
type DomainColumn struct {
	Name       string
	DomainName string
	Type       DomainColumnType
}

// IsSpan reports whether the column holds a start or end coordinate.
func (d DomainColumn) IsSpan() bool {
	return d.Type == DomainStart || d.Type == DomainEnd
}

func isDomainColumnName(col string) bool {
	return strings.Contains(strings.ToLower(col), "domain")
}

// ParseDomainColumn splits "domain1_TIR_start" into its parts. Domain names
// may contain underscores ("domain2_P_loop_end" is domain "P_loop").
func ParseDomainColumn(col string) (DomainColumn, error) {

	parts := strings.Split(col, "_")
	if len(parts) < 2 || parts[1] == "" {
		return DomainColumn{}, fmt.Errorf("invalid domain column format, needs underscore: %s", col)
	}

	if len(parts) == 2 {
		return DomainColumn{Name: col, DomainName: parts[1], Type: DomainFlag}, nil
	}

	last := parts[len(parts)-1]
	name := strings.Join(parts[1:len(parts)-1], "_")

	switch strings.ToLower(last) {
	case "start":
		return DomainColumn{Name: col, DomainName: name, Type: DomainStart}, nil
	case "end":
		return DomainColumn{Name: col, DomainName: name, Type: DomainEnd}, nil
	case "na":
		return DomainColumn{Name: col, DomainName: name, Type: DomainFlag}, nil
	default:
		// No recognised suffix, the whole tail is the name.
		return DomainColumn{Name: col, DomainName: strings.Join(parts[1:], "_"), Type: DomainFlag}, nil
	}
}

// ExtractDomainColumns returns the domain columns of header in order.
// Columns that mention "domain" but do not follow the pattern are skipped.
func ExtractDomainColumns(header []string) []DomainColumn {
	var out []DomainColumn
	for _, col := range header {
		if !isDomainColumnName(col) {
			continue
		}
		dc, err := ParseDomainColumn(col)
		if err != nil {
			continue
		}
		out = append(out, dc)
	}
	return out
}

// DomainNames lists the distinct domain names in first-seen order.
func DomainNames(cols []DomainColumn) []string {
	seen := make(map[string]bool)
	var names []string
	for _, c := range cols {
		if !seen[c.DomainName] {
			seen[c.DomainName] = true
			names = append(names, c.DomainName)
		}
	}
	return names
}

// ValidateDomainColumns checks that domain columns exist and that every domain
// with a start or an end column has both.
func ValidateDomainColumns(cols []DomainColumn) []*errs.Error {

	if len(cols) == 0 {
		return []*errs.Error{errs.Schema("No domain columns found (should be in format 'domainX_NAME_start/end/NA')")}
	}

	var issues []*errs.Error
	for _, name := range DomainNames(cols) {
		hasStart, hasEnd := false, false
		for _, c := range cols {
			if c.DomainName != name {
				continue
			}
			switch c.Type {
			case DomainStart:
				hasStart = true
			case DomainEnd:
				hasEnd = true
			}
		}
		if hasStart != hasEnd {
			issues = append(issues, errs.Referential(errs.ErrUnpairedDomain,
				"Domain %s must have both start and end positions in the same file", name))
		}
	}
	return issues
}
