package request

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
)

// RequestError is a malformed request; Msg is shown to the client as is.
type RequestError struct {
	Msg string
}

func (e *RequestError) Error() string {
	return e.Msg
}

func badRequest(format string, args ...any) error {
	return &RequestError{Msg: fmt.Sprintf(format, args...)}
}

// IsRequestError reports whether err was caused by the request itself.
func IsRequestError(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

const maxDomainMatrices = 3

// GraphRequest is a parsed POST /api/v1/graph form.
type GraphRequest struct {
	Kind       GraphKind
	Title      string
	Cutoff     *float64 // nil keeps the configured threshold
	Coordinate *multipart.FileHeader
	Matrices   []*multipart.FileHeader
}

// ParseGraphRequest reads the multipart form of r. Files stay on the headers;
// callers open them.
func ParseGraphRequest(r *http.Request, maxMemory int64) (*GraphRequest, error) {

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, badRequest("Invalid multipart form: %v", err)
	}

	req := &GraphRequest{
		Kind:  ParseGraphKind(r.FormValue(FieldIsDomainSpecific)),
		Title: strings.TrimSpace(r.FormValue(FieldTitle)),
	}

	if raw := strings.TrimSpace(r.FormValue(FieldCutoff)); raw != "" {
		cutoff, err := strconv.ParseFloat(raw, 64)
		if err != nil || cutoff < 0 {
			return nil, badRequest("cutoff must be a non-negative number")
		}
		req.Cutoff = &cutoff
	}

	coords := r.MultipartForm.File[FieldCoordinateFile]
	req.Matrices = r.MultipartForm.File[FieldMatrixFiles]

	switch {
	case len(coords) == 0 || len(req.Matrices) == 0:
		return nil, badRequest("Coordinate file and at least one matrix file are required")
	case len(coords) > 1:
		return nil, badRequest("Exactly one coordinate file is allowed")
	case req.Kind == GraphKindDomain && len(req.Matrices) > maxDomainMatrices:
		return nil, badRequest("A maximum of three matrix files are allowed for domain-specific graphs")
	case req.Kind == GraphKindGeneral && len(req.Matrices) != 1:
		return nil, badRequest("Exactly one matrix file is required for non-domain-specific graphs")
	}
	req.Coordinate = coords[0]

	return req, nil
}
