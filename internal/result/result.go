package result

// Error represents a validation or generation error.
type Error struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	ElementID  string `json:"element_id,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Warning represents a best-practice or non-fatal warning.
type Warning struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	ElementID  string `json:"element_id,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ExportResult is the result of exporting a diagram to Terraform.
type ExportResult struct {
	Success        bool              `json:"success"`
	TerraformFiles map[string][]byte `json:"-"`                   // filename -> content
	Resources      map[string]string `json:"resources,omitempty"` // element id -> address
	Errors         []Error           `json:"errors,omitempty"`
	Warnings       []Warning         `json:"warnings,omitempty"`
}

// Fail records an error and marks the result unsuccessful.
func (r *ExportResult) Fail(e Error) {
	if e.Severity == "" {
		e.Severity = "error"
	}
	r.Errors = append(r.Errors, e)
	r.Success = false
}

// Warn records a warning.
func (r *ExportResult) Warn(w Warning) {
	if w.Severity == "" {
		w.Severity = "warning"
	}
	r.Warnings = append(r.Warnings, w)
}
