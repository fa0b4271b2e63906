package coursechat

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request failed local validation.
	ErrValidation = errors.New("validation error")

	// ErrTransport indicates the backend was unreachable or answered with a
	// non-success status.
	ErrTransport = errors.New("transport error")

	// ErrMalformedResponse indicates a response body was missing expected
	// fields or could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrUnknownSession indicates the backend no longer has the session.
	ErrUnknownSession = errors.New("unknown session")

	// ErrGeneration indicates the backend reported that quiz or flashcard
	// generation did not succeed.
	ErrGeneration = errors.New("generation failed")
)

// Operation errors. They are combined with one of the cause sentinels above,
// so both errors.Is(err, ErrFetch) and errors.Is(err, ErrTransport) hold.
var (
	ErrSessionCreate = errors.New("create session")
	ErrSessionDelete = errors.New("delete session")
	ErrFetch         = errors.New("fetch session")
)
