// Package fetcher retrieves indicator data from the Africa Energy Portal.
// Implement the Fetcher interface to plug in another transport or a fixture.
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/energydata/aep/pkg/catalog"
)

// Fetcher abstracts the portal data endpoint.
type Fetcher interface {
	// Fetch performs one request for a single indicator across all countries
	// and years and returns the decoded metric objects.
	Fetch(ctx context.Context, spec catalog.IndicatorSpec, countries []string, years []int) ([]MetricObject, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns a string identifying the fetcher type.
	Type() string
}

// MetricObject is one element of the portal's JSON array response.
type MetricObject struct {
	ID   Scalar  `json:"_id"`
	Data []Entry `json:"data"`
}

// Entry is one country/year data point inside a MetricObject.
type Entry struct {
	Country     string `json:"name"`
	CountryCode Scalar `json:"id"`
	Unit        string `json:"unit"`
	Source      string `json:"indicator_source"`
	Year        Scalar `json:"year"`
	Score       Scalar `json:"score"`
	URL         string `json:"url"`
}

// Scalar holds a JSON string, number, boolean or null as its text form.
// Null decodes to the empty string.
type Scalar string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*s = ""
	case b[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Scalar(str)
	case bytes.Equal(b, []byte("true")) || bytes.Equal(b, []byte("false")):
		*s = Scalar(b)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("scalar: unsupported JSON value %s", truncate(string(b), 32))
		}
		*s = Scalar(n.String())
	}
	return nil
}

// Error types for distinguishing failure reasons.
// Check with errors.Is(err, fetcher.ErrStatus).
var (
	// ErrInvalidRequest indicates the request was rejected before any I/O.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrTransport indicates a connection failure or timeout.
	ErrTransport = errors.New("transport error")
	// ErrStatus indicates a non-2xx HTTP status.
	ErrStatus = errors.New("unexpected status")
	// ErrDecode indicates the body was not the expected JSON shape.
	ErrDecode = errors.New("decode error")
	// ErrEmpty indicates the portal returned no data points.
	ErrEmpty = errors.New("empty response")
)

// StatusError carries the HTTP status of a failed request.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http %d", e.Code)
	}
	return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}

// Is makes errors.Is(err, ErrStatus) succeed.
func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// ResolveLink resolves a relative portal link against base. Absolute links
// are returned unchanged and an empty ref yields an empty string.
func ResolveLink(base, ref string) string {
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil || b.Scheme == "" {
		return ref
	}
	return b.ResolveReference(r).String()
}

// CountEntries returns the total number of entries across objs.
func CountEntries(objs []MetricObject) int {
	n := 0
	for _, o := range objs {
		n += len(o.Data)
	}
	return n
}

func validateRequest(spec catalog.IndicatorSpec, countries []string, years []int) error {
	switch {
	case spec.Sector == "":
		return fmt.Errorf("%w: empty sector", ErrInvalidRequest)
	case spec.SubSector == "":
		return fmt.Errorf("%w: empty sub-sector", ErrInvalidRequest)
	case spec.IndicatorName == "":
		return fmt.Errorf("%w: empty indicator name", ErrInvalidRequest)
	case len(countries) == 0:
		return fmt.Errorf("%w: no countries", ErrInvalidRequest)
	case len(years) == 0:
		return fmt.Errorf("%w: no years", ErrInvalidRequest)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
