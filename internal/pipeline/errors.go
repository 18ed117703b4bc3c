package pipeline

import (
	"errors"
	"fmt"
)

// ErrDecode is wrapped by the error returned when the request image cannot
// be decoded.
var ErrDecode = errors.New("decode image")

// Kind classifies the outcome of a region or a request.
type Kind int

const (
	// KindNone marks a region processed without incident.
	KindNone Kind = iota
	// KindDecode is fatal: the image could not be decoded and nothing was produced.
	KindDecode
	// KindRegion is recoverable: one region failed and kept its pre-failure state.
	KindRegion
	// KindFallback is degraded: no candidate size fit and the fallback font was used.
	KindFallback
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindDecode:
		return "decode"
	case KindRegion:
		return "region"
	case KindFallback:
		return "fallback"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name written by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, c := range []Kind{KindNone, KindDecode, KindRegion, KindFallback} {
		if string(text) == c.String() {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown kind %q", text)
}

// Error describes a failed operation on one region, or on the whole request
// when Region is negative.
type Error struct {
	Kind   Kind
	Region int
	Op     string
	Err    error
}

func (e *Error) Error() string {
	if e.Region < 0 {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: region %d: %s: %v", e.Kind, e.Region, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches a target *Error with the same Kind and no cause, so callers can
// test errors.Is(err, &pipeline.Error{Kind: pipeline.KindDecode}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind carried by err, KindNone for nil and KindRegion for
// errors that are not *Error.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindRegion
}
