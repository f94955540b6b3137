// Package doctor provides health checks for an enforcer installation.
package doctor

import "context"

// Severity represents the severity level of a check result
type Severity string

const (
	// SeverityError marks a problem that stops hooks from working correctly
	SeverityError Severity = "error"
	// SeverityWarning marks a problem that degrades behaviour but does not break hooks
	SeverityWarning Severity = "warning"
	// SeverityInfo marks informational output
	SeverityInfo Severity = "info"
)

// Status represents the status of a health check
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusSkipped Status = "skipped"
)

// Category groups related checks.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryPaths    Category = "paths"
	CategoryPolicies Category = "policies"
)

// CheckResult represents the result of a health check
type CheckResult struct {
	Name     string
	Category Category
	Severity Severity
	Status   Status
	Message  string
	Details  []string

	// FixID links to a Fixer that can repair this result, if any.
	FixID string
}

// HealthChecker performs a single health check.
type HealthChecker interface {
	Name() string
	Category() Category
	Check(ctx context.Context) CheckResult
}

// Fixer repairs the problem reported by a failing check.
type Fixer interface {
	ID() string
	Description() string
	Fix(ctx context.Context) error
}

func newResult(name string, severity Severity, status Status, message string) CheckResult {
	return CheckResult{
		Name:     name,
		Severity: severity,
		Status:   status,
		Message:  message,
	}
}

// WithDetails appends details to a CheckResult.
func (r CheckResult) WithDetails(details ...string) CheckResult {
	r.Details = append(r.Details, details...)
	return r
}

// WithFixID sets the fixer that can repair this result.
func (r CheckResult) WithFixID(fixID string) CheckResult {
	r.FixID = fixID
	return r
}

// Pass creates a passing check result
func Pass(name, message string) CheckResult {
	return newResult(name, SeverityInfo, StatusPass, message)
}

// FailError creates a failing check result with error severity
func FailError(name, message string) CheckResult {
	return newResult(name, SeverityError, StatusFail, message)
}

// FailWarning creates a failing check result with warning severity
func FailWarning(name, message string) CheckResult {
	return newResult(name, SeverityWarning, StatusFail, message)
}

// Skip creates a skipped check result
func Skip(name, message string) CheckResult {
	return newResult(name, SeverityInfo, StatusSkipped, message)
}

func (r CheckResult) IsError() bool {
	return r.Status == StatusFail && r.Severity == SeverityError
}

func (r CheckResult) IsWarning() bool {
	return r.Status == StatusFail && r.Severity == SeverityWarning
}

func (r CheckResult) IsPassed() bool {
	return r.Status == StatusPass
}

func (r CheckResult) HasFix() bool {
	return r.FixID != ""
}

// Summary counts results by outcome.
type Summary struct {
	Passed   int
	Warnings int
	Errors   int
	Skipped  int
}

// Summarize counts results by outcome.
func Summarize(results []CheckResult) Summary {
	var s Summary

	for _, r := range results {
		switch {
		case r.IsPassed():
			s.Passed++
		case r.IsError():
			s.Errors++
		case r.IsWarning():
			s.Warnings++
		default:
			s.Skipped++
		}
	}

	return s
}
