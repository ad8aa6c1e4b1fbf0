package dash

import (
	"fmt"

	"mpdharvest/internal/logger"
)

// Scope classifies a non-fatal problem by how much of the output it affects.
type Scope string

const (
	// ScopeAttribute means one field was degraded to absent or its default.
	ScopeAttribute Scope = "attribute"
	// ScopeRepresentation means a whole representation produced no media URLs.
	ScopeRepresentation Scope = "representation"
	// ScopeSegment means the initialization or media part of one
	// representation was skipped.
	ScopeSegment Scope = "segment"
	// ScopeInfo carries notes that do not reduce the output.
	ScopeInfo Scope = "info"
)

// Diagnostic is a non-fatal finding recorded while parsing or resolving.
type Diagnostic struct {
	Scope   Scope  `json:"scope"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s", d.Scope, d.Message)
}

// diagnostics collects findings and mirrors them to the logger.
type diagnostics struct {
	log   logger.Logger
	items []Diagnostic
}

func newDiagnostics(log logger.Logger) *diagnostics {
	return &diagnostics{log: log}
}

func (d *diagnostics) add(scope Scope, format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	d.items = append(d.items, Diagnostic{Scope: scope, Message: msg})
	if d.log == nil {
		return
	}
	if scope == ScopeInfo {
		d.log.Debugf("%s", msg)
		return
	}
	d.log.Warnf("%s", msg)
}
