package shop

import "fmt"

// NetworkError is a transport failure: the request never produced a usable
// response. The operation is aborted and never retried automatically.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("cart request %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError is a malformed response body. Business-rule violations are NOT
// parse errors: the platform reports those in-band with HTTP 200 and an errors
// payload, which callers read off the returned snapshot.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cart response %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
