package bacs

import (
	"errors"
	"fmt"
	"log/slog"
)

// Severity classifies a validation issue.
type Severity uint8

const (
	// SeverityWarning marks an issue that does not block the bake.
	SeverityWarning Severity = iota
	// SeverityError marks an issue that fails the whole scope.
	SeverityError
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue is a single collected validation finding.
type Issue struct {
	Scope    string
	Message  string
	Severity Severity
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Scope, i.Message)
}

// issueCounts is a cheap snapshot of collected totals.
type issueCounts struct {
	warnings int
	errors   int
}

// Validator collects issues during the one-time validation pass of a bake.
// Issues are accumulated, never thrown, so a single pass surfaces every
// problem across every subject before the caller decides whether to
// proceed. The scope string attributes each issue to the subject or
// behavior being processed and is updated by the bake loop before each
// OnValidate call.
type Validator struct {
	scope  string
	issues []Issue
	totals issueCounts
	log    *slog.Logger
}

// NewValidator creates a validator logging through slog.Default.
func NewValidator() *Validator {
	return &Validator{log: slog.Default()}
}

// SetScope sets the attribution label for subsequently reported issues.
func (v *Validator) SetScope(scope string) {
	v.scope = scope
}

// Scope returns the current attribution label.
func (v *Validator) Scope() string { return v.scope }

// ReportWarning records a non-fatal issue.
func (v *Validator) ReportWarning(message string) {
	v.issues = append(v.issues, Issue{Scope: v.scope, Message: message, Severity: SeverityWarning})
	v.totals.warnings++
	v.log.Warn("bacs: validation warning", "scope", v.scope, "message", message)
}

// ReportWarningf records a non-fatal issue with fmt formatting.
func (v *Validator) ReportWarningf(format string, args ...any) {
	v.ReportWarning(fmt.Sprintf(format, args...))
}

// ReportError records an issue that fails the scope's bake.
func (v *Validator) ReportError(message string) {
	v.issues = append(v.issues, Issue{Scope: v.scope, Message: message, Severity: SeverityError})
	v.totals.errors++
	v.log.Error("bacs: validation error", "scope", v.scope, "message", message)
}

// ReportErrorf records a scope-failing issue with fmt formatting.
func (v *Validator) ReportErrorf(format string, args ...any) {
	v.ReportError(fmt.Sprintf(format, args...))
}

// HasErrors reports whether any error-severity issue was collected.
func (v *Validator) HasErrors() bool { return v.totals.errors > 0 }

// Issues returns all collected issues in report order.
func (v *Validator) Issues() []Issue {
	out := make([]Issue, len(v.issues))
	copy(out, v.issues)
	return out
}

// Err aggregates every error-severity issue into one error, or nil if none
// was collected. All messages are included so content authors can fix
// multiple problems in one iteration.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	errs := make([]error, 0, v.totals.errors)
	for _, i := range v.issues {
		if i.Severity == SeverityError {
			errs = append(errs, errors.New(i.String()))
		}
	}
	return errors.Join(errs...)
}

func (v *Validator) counts() issueCounts { return v.totals }
