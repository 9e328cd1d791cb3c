package lockclient

import "fmt"

// Error provides constant error strings to the driver functions.
type Error string

func (e Error) Error() string { return string(e) }

// Constant errors.
// Rule of thumb, all errors start with a small letter and end with no full stop.
const (
	ErrUnexpectedResponse = Error("unexpected response from the lockservice")
)

// ResponseError carries a non-successful reply of the node.
type ResponseError struct {
	Status int
	Body   string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", ErrUnexpectedResponse, e.Status, e.Body)
}

// Is makes every ResponseError match ErrUnexpectedResponse.
func (e *ResponseError) Is(target error) bool {
	return target == ErrUnexpectedResponse
}
