package domain

import (
	"fmt"
	"slices"
	"strings"
)

// DiagImageNotFound marks a photo attachment whose remote copy is gone.
const DiagImageNotFound = "IMAGE NOT FOUND"

const diagnosticDelim = ":: "

var diagnosticKinds = []string{
	DiagImageNotFound,
}

// DiagnosticPart stands in for an attachment that could not be resolved.
// Its body carries a machine-parsable marker so downstream statistics can
// count the failure without losing the message.
type DiagnosticPart struct {
	Kind    string
	Locator string // the original URL or reference
}

// NewDiagnosticPart validates the kind against the known set and rejects
// locators that would break the marker format.
func NewDiagnosticPart(kind, locator string) (DiagnosticPart, error) {
	if !slices.Contains(diagnosticKinds, kind) {
		return DiagnosticPart{}, fmt.Errorf("unknown diagnostic kind %q", kind)
	}
	if strings.Contains(locator, diagnosticDelim) {
		return DiagnosticPart{}, fmt.Errorf("diagnostic locator %q contains the marker delimiter", locator)
	}
	return DiagnosticPart{Kind: kind, Locator: locator}, nil
}

func (DiagnosticPart) MimeType() string { return "text/plain" }

// Body renders the in-band marker, e.g. "ERROR:: IMAGE NOT FOUND:: <url>".
func (p DiagnosticPart) Body() string {
	return strings.Join([]string{"ERROR", p.Kind, p.Locator}, diagnosticDelim)
}

// ParseDiagnostic recovers the marker from a message body. ok is false when
// the body is ordinary text.
func ParseDiagnostic(body string) (kind, locator string, ok bool) {
	if !strings.HasPrefix(body, "ERROR"+diagnosticDelim) {
		return "", "", false
	}
	fields := strings.SplitN(body, diagnosticDelim, 3)
	if len(fields) != 3 {
		return "", "", false
	}
	return fields[1], fields[2], true
}
