package optimize

import "fmt"

// APICallError represents a failure to obtain a response from the model
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("AI API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError represents a model response that is not usable JSON
type ParseError struct {
	Message string
	// Response is the raw model text, kept for debugging
	Response string
	Cause    error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to parse AI response: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to parse AI response: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
