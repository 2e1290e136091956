package api

import "fmt"

// APIError is the decoded error envelope of a non-2xx response.
type APIError struct {
	Status    int
	Code      string
	ErrorCode int
	Message   string
}

func (e *APIError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Code != "" && e.Message != "":
		return e.Code + ": " + e.Message
	case e.Message != "":
		return e.Message
	case e.Status > 0:
		return fmt.Sprintf("api error: %d", e.Status)
	default:
		return "api error"
	}
}

// ErrorMessage returns the server-provided message without the code prefix.
func (e *APIError) ErrorMessage() string {
	if e == nil {
		return ""
	}
	return e.Message
}
