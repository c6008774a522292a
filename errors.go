package fwres

import "fmt"

// ErrorKind classifies the failures the engine can surface. Callers branch
// on kind with errors.Is against the matching sentinel (ErrOutOfBounds,
// ErrSignatureNotFound, ...) rather than string-matching Error().
type ErrorKind int

const (
	_ ErrorKind = iota
	KindOutOfBounds
	KindSignatureNotFound
	KindMetadataNotFound
	KindNameNotFound
	KindInvalidPayloadSize
	KindInvalidDimensions
	KindInvalidPayloadContent
	KindInvalidFormat
	KindCodecDisagreement
)

func (k ErrorKind) String() string {
	switch k {
	case KindOutOfBounds:
		return "OutOfBounds"
	case KindSignatureNotFound:
		return "SignatureNotFound"
	case KindMetadataNotFound:
		return "MetadataNotFound"
	case KindNameNotFound:
		return "NameNotFound"
	case KindInvalidPayloadSize:
		return "InvalidPayloadSize"
	case KindInvalidDimensions:
		return "InvalidDimensions"
	case KindInvalidPayloadContent:
		return "InvalidPayloadContent"
	case KindInvalidFormat:
		return "InvalidFormat"
	case KindCodecDisagreement:
		return "CodecDisagreement"
	default:
		return "Unknown"
	}
}

// sentinel errors, one per ErrorKind, so callers can use errors.Is without
// reaching for the concrete *Error type.
var (
	ErrOutOfBounds           = &Error{Kind: KindOutOfBounds, Message: "out of bounds"}
	ErrSignatureNotFound     = &Error{Kind: KindSignatureNotFound, Message: "signature not found"}
	ErrMetadataNotFound      = &Error{Kind: KindMetadataNotFound, Message: "metadata table not found"}
	ErrNameNotFound          = &Error{Kind: KindNameNotFound, Message: "name not found"}
	ErrInvalidPayloadSize    = &Error{Kind: KindInvalidPayloadSize, Message: "invalid payload size"}
	ErrInvalidDimensions     = &Error{Kind: KindInvalidDimensions, Message: "invalid dimensions"}
	ErrInvalidPayloadContent = &Error{Kind: KindInvalidPayloadContent, Message: "invalid payload content"}
	ErrInvalidFormat         = &Error{Kind: KindInvalidFormat, Message: "invalid format"}
	ErrCodecDisagreement     = &Error{Kind: KindCodecDisagreement, Message: "codec disagreement"}
)

// Error is the concrete error type the engine returns. It wraps an optional
// underlying cause (a binio bounds error, say) while keeping Kind available
// for errors.Is/errors.As comparisons.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fwres: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("fwres: %s", e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is makes errors.Is(err, ErrSignatureNotFound) match any *Error with the
// same Kind, regardless of Message/Cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErrorf(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}
