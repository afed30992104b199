package service

import "regexp"

// Simple local@domain.tld shape; deliverability is the provider's problem.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validateSubmission enforces required-field presence and email shape on
// already-sanitized fields, before any scoring happens.
func validateSubmission(name, email, message string) error {
	if name == "" || email == "" || message == "" {
		return &ValidationError{Reason: "Missing required fields"}
	}
	if len(email) > maxEmailLen || !emailPattern.MatchString(email) {
		return &ValidationError{Reason: "Invalid email format"}
	}
	return nil
}
