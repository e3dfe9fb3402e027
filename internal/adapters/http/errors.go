package http

import "fmt"

// DeliveryError describes a failed upload. Either Status and Body are set
// (the service answered with a non-2xx status) or Err holds the local or
// transport failure.
type DeliveryError struct {
	Status int
	Body   string
	Err    error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return "deliver log group: " + e.Err.Error()
	}
	return fmt.Sprintf("deliver log group: server returned %d: %s", e.Status, e.Body)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
