package dash

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"mpdharvest/internal/logger"
	"mpdharvest/internal/models"

	"github.com/samber/lo"
)

// ErrNoBaseURL is returned when the manifest URL contains no '/', so no
// base URL can be formed.
var ErrNoBaseURL = errors.New("manifest URL has no path separator")

// URLInfo is the ordered list of absolute segment URLs of a manifest,
// together with the base URL they were resolved against.
type URLInfo struct {
	BaseURL string   `json:"base_url"`
	URLs    []string `json:"urls"`
}

// Result is the outcome of resolving a manifest.
type Result struct {
	BaseURL     string
	Segments    []models.Segment
	Diagnostics []Diagnostic
}

// URLInfo flattens the result into its URLs.
func (r *Result) URLInfo() URLInfo {
	return URLInfo{
		BaseURL: r.BaseURL,
		URLs: lo.Map(r.Segments, func(s models.Segment, _ int) string {
			return s.URL
		}),
	}
}

// BaseURL returns manifestURL truncated after its last '/'.
func BaseURL(manifestURL string) (string, error) {
	pos := strings.LastIndexByte(manifestURL, '/')
	if pos < 0 {
		return "", fmt.Errorf("%w: %q", ErrNoBaseURL, manifestURL)
	}
	return manifestURL[:pos+1], nil
}

// absoluteURL prefixes rel with base unless rel already is an absolute URL.
func absoluteURL(base, rel string) string {
	if u, err := url.Parse(rel); err == nil && u.IsAbs() && u.Host != "" {
		return rel
	}
	return base + rel
}

// Resolve enumerates the segments of m in document order: period, then
// adaptation set, then representation; the initialization segment of a
// representation precedes its media segments. It fails only when no base URL
// can be derived or a template carries an unusable format specifier.
// Everything else is recorded in the result's diagnostics.
func Resolve(m *Manifest, log logger.Logger) (*Result, error) {
	if log == nil {
		log = logger.NewNop()
	}
	base, err := BaseURL(m.URL)
	if err != nil {
		return nil, err
	}

	e := &enumerator{
		manifest: m,
		baseURL:  base,
		diag:     newDiagnostics(log),
	}
	if err := e.run(); err != nil {
		return nil, err
	}
	return &Result{
		BaseURL:     base,
		Segments:    e.segments,
		Diagnostics: e.diag.items,
	}, nil
}

// GetFragmentURLs parses the manifest text fetched from manifestURL and
// resolves it into segment URLs.
func GetFragmentURLs(data []byte, manifestURL string, log logger.Logger) (*Result, error) {
	if log == nil {
		log = logger.NewNop()
	}
	m, parseDiags, err := Parse(data, manifestURL, log)
	if err != nil {
		return nil, err
	}
	res, err := Resolve(m, log)
	if err != nil {
		return nil, err
	}
	res.Diagnostics = append(parseDiags, res.Diagnostics...)
	return res, nil
}
