package request

import "strings"

// Multipart form fields of a graph generation request.
const (
	FieldCoordinateFile   = "coordinate_file"
	FieldMatrixFiles      = "matrix_files"
	FieldIsDomainSpecific = "is_domain_specific"
	FieldTitle            = "title"
	FieldCutoff           = "cutoff"
)

type GraphKind int

const (
	GraphKindGeneral GraphKind = iota
	GraphKindDomain
)

func (k GraphKind) String() string {
	switch k {
	case GraphKindDomain:
		return "domain"
	default:
		return "general"
	}
}

// ParseGraphKind reads the is_domain_specific field. The front end sends
// "true"/"false"; anything unknown falls back to general.
func ParseGraphKind(value string) GraphKind {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on", "domain":
		return GraphKindDomain
	default:
		return GraphKindGeneral
	}
}
