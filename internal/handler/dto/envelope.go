// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// Envelope wraps every JSON response body.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"` // offending input on validation failures
}

// OK wraps data in a success envelope.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// OKMessage is a success envelope without data.
func OKMessage(message string) Envelope {
	return Envelope{Success: true, Message: message}
}

// Fail is a failure envelope.
func Fail(message, field string) Envelope {
	return Envelope{Message: message, Field: field}
}
