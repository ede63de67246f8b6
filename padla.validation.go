package padla

// ValidationSeverity indicates the severity of a validation issue.
type ValidationSeverity int

const (
	// SeverityError indicates a placeholder that would render the unknown replacement
	SeverityError ValidationSeverity = iota
	// SeverityWarning indicates text that looks like syntax but renders literally
	SeverityWarning
	// SeverityInfo indicates informational feedback
	SeverityInfo
)

// Validation severity string names
const (
	SeverityNameError   = "error"
	SeverityNameWarning = "warning"
	SeverityNameInfo    = "info"
)

// Validation messages
const (
	ValidationMsgUnknownFormatter = "no formatter registered for placeholder"
	ValidationMsgPlainSource      = "template contains no placeholders"
)

// String returns the string representation of the validation severity
func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return SeverityNameError
	case SeverityWarning:
		return SeverityNameWarning
	case SeverityInfo:
		return SeverityNameInfo
	default:
		return SeverityNameError
	}
}

// ValidationIssue represents a single validation finding.
type ValidationIssue struct {
	Severity ValidationSeverity
	Message  string
	Position Position
	Name     string
}

// ValidationResult contains the results of template validation.
type ValidationResult struct {
	issues []ValidationIssue
	report *Report
}

// Issues returns all validation issues found.
func (r *ValidationResult) Issues() []ValidationIssue {
	return r.issues
}

// Report returns the inspection report the issues were derived from.
func (r *ValidationResult) Report() *Report {
	return r.report
}

// Errors returns only issues with error severity.
func (r *ValidationResult) Errors() []ValidationIssue {
	return r.filter(SeverityError)
}

// Warnings returns only issues with warning severity.
func (r *ValidationResult) Warnings() []ValidationIssue {
	return r.filter(SeverityWarning)
}

// HasErrors returns true if there are any error-severity issues.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors()) > 0
}

// HasWarnings returns true if there are any warning-severity issues.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings()) > 0
}

// IsValid returns true if there are no error-severity issues.
func (r *ValidationResult) IsValid() bool {
	return !r.HasErrors()
}

func (r *ValidationResult) filter(severity ValidationSeverity) []ValidationIssue {
	var issues []ValidationIssue
	for _, issue := range r.issues {
		if issue.Severity == severity {
			issues = append(issues, issue)
		}
	}
	return issues
}

// Validate inspects source against the engine's syntax and registry.
// Placeholders without a formatter are errors, literal pass-through of
// malformed syntax is a warning.
func (e *Engine[T]) Validate(source string) *ValidationResult {
	report := e.Inspect(source)
	result := &ValidationResult{
		issues: make([]ValidationIssue, 0, len(report.Diagnostics)),
		report: report,
	}

	for _, p := range report.Placeholders {
		if e.registry.Has(p.Key) {
			continue
		}
		result.issues = append(result.issues, ValidationIssue{
			Severity: SeverityError,
			Message:  ValidationMsgUnknownFormatter,
			Position: p.Position,
			Name:     p.Key,
		})
	}

	for _, d := range report.Diagnostics {
		result.issues = append(result.issues, ValidationIssue{
			Severity: SeverityWarning,
			Message:  d.Message,
			Position: d.Position,
			Name:     d.Kind,
		})
	}

	if report.Plain && source != "" {
		result.issues = append(result.issues, ValidationIssue{
			Severity: SeverityInfo,
			Message:  ValidationMsgPlainSource,
		})
	}
	return result
}
