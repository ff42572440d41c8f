// Package models defines the domain types shared across the AxPersona
// pipeline: business context, questionnaires, personas, interviews,
// analysis envelopes, datasets, and pipeline run records.
package models

import "strings"

// BusinessContext is the short business brief that seeds every pipeline run.
type BusinessContext struct {
	BusinessIdea   string `json:"business_idea"`
	TargetCustomer string `json:"target_customer"`
	Problem        string `json:"problem"`
	Industry       string `json:"industry,omitempty"`
	Location       string `json:"location,omitempty"`
}

// Validate checks that the three required brief fields are present.
func (c BusinessContext) Validate() error {
	if strings.TrimSpace(c.BusinessIdea) == "" {
		return &FieldError{Field: "business_idea", Reason: "required"}
	}
	if strings.TrimSpace(c.TargetCustomer) == "" {
		return &FieldError{Field: "target_customer", Reason: "required"}
	}
	if strings.TrimSpace(c.Problem) == "" {
		return &FieldError{Field: "problem", Reason: "required"}
	}
	return nil
}

// FieldError reports a single invalid or missing input field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}
