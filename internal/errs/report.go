package errs

import (
	"encoding/json"
	"errors"

	"github.com/minnieml/mmlc/internal/source"
)

// Report is the canonical structured diagnostic for MinnieML. Every
// parser/semantic/ownership/codegen error is surfaced as one of these.
type Report struct {
	Schema  string         `json:"schema"` // always "mml.error/v1"
	Code    string         `json:"code"`
	Phase   string         `json:"phase"` // fully-qualified phase name, e.g. "semantic.RefResolve"
	Message string         `json:"message"`
	Origin  source.Origin  `json:"-"`
	Span    *source.Span   `json:"span,omitempty"`
	Related []source.Span  `json:"related,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// New builds a Report, populating Span only when origin points at real
// source text — synthetic spans are filtered before reaching LSP/CLI
// consumers.
func New(code, phase, message string, origin source.Origin) *Report {
	r := &Report{Schema: "mml.error/v1", Code: code, Phase: phase, Message: message, Origin: origin}
	if !origin.IsSynth() {
		span := origin.Span
		r.Span = &span
	}
	return r
}

// ReportError wraps a Report so it satisfies error while surviving
// errors.As unwrapping.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain, if present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// Wrap turns a Report into an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON renders the report deterministically.
func (r *Report) ToJSON(compact bool) (string, error) {
	if compact {
		data, err := json.Marshal(r)
		return string(data), err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	return string(data), err
}

// IsUserVisible reports whether the report's origin points at real source
// text, i.e. whether it should be surfaced to a human.
func (r *Report) IsUserVisible() bool {
	return !r.Origin.IsSynth()
}

// FilterUserVisible returns the subset of reports pointing at real source.
func FilterUserVisible(reports []*Report) []*Report {
	var out []*Report
	for _, r := range reports {
		if r.IsUserVisible() {
			out = append(out, r)
		}
	}
	return out
}
