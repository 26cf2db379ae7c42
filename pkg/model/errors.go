package model

import "fmt"

// ServiceError is a non-success response of the generation service. Detail
// is the human readable message supplied by the server, if any.
type ServiceError struct {
	StatusCode int
	Detail     string
}

func (x *ServiceError) Error() string {
	if x.Detail != "" {
		return fmt.Sprintf("generation service error (status %d): %s", x.StatusCode, x.Detail)
	}
	return fmt.Sprintf("generation service error (status %d)", x.StatusCode)
}
