package crawl

import "fmt"

// Kind classifies a crawl failure. The kind decides how far the failure
// propagates: structural and transport errors abort the current room,
// data errors abort only the item being processed.
type Kind int

const (
	// KindStructural marks an expected listing or post markup element as
	// absent. This signals the remote source's layout changed and should
	// not be silently absorbed.
	KindStructural Kind = iota

	// KindTransport marks a page fetch failure.
	KindTransport

	// KindData marks a malformed value inside otherwise well-formed
	// markup: an unparseable timestamp or identifier, a missing byline.
	KindData
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindTransport:
		return "transport"
	case KindData:
		return "data"
	default:
		return "unknown"
	}
}

// Error is a classified crawl failure.
//
// Design decision: The reference behavior used hard assertions for missing
// markup, taking the whole run down. Carrying a Kind instead lets the
// scheduler scope recovery: skip an item, abandon a room, or stop the run,
// while errors.As still exposes the classification to callers.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Op names the operation that failed, e.g. "parse room entry".
	Op string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Op)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// structuralErr builds a structural-kind error.
func structuralErr(op string, err error) *Error {
	return &Error{Kind: KindStructural, Op: op, Err: err}
}

// transportErr builds a transport-kind error.
func transportErr(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

// dataErr builds a data-kind error.
func dataErr(op string, err error) *Error {
	return &Error{Kind: KindData, Op: op, Err: err}
}
