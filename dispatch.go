package ftracker

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrUnknownActivityCode is returned for codes other than RUN, WLK and SWM.
	ErrUnknownActivityCode = errors.New("unknown activity code")
	// ErrArityMismatch is returned when a package carries the wrong number of values.
	ErrArityMismatch = errors.New("arity mismatch")
	// ErrInvalidMagnitude is returned for values the formulas cannot accept.
	ErrInvalidMagnitude = errors.New("invalid magnitude")
)

// ParseCode maps a sensor code to its Kind. Codes are matched exactly.
func ParseCode(code string) (Kind, error) {
	for _, k := range Kinds() {
		if k.Code() == code {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w %q (expected %s)", ErrUnknownActivityCode, code, strings.Join(codes(), "|"))
}

func codes() []string {
	out := make([]string, 0, len(kindTable))
	for _, k := range Kinds() {
		out = append(out, k.Code())
	}
	return out
}

// MarshalText encodes k as its sensor code.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownActivityCode, k)
	}
	return []byte(k.Code()), nil
}

// UnmarshalText decodes a sensor code.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseCode(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ReadPackage turns a raw sensor package into a validated Sample.
//
// values are ordered as the sensors send them:
//
//	RUN: action, duration, weight
//	WLK: action, duration, weight, height
//	SWM: action, duration, weight, pool length, pool laps
func ReadPackage(code string, values []float64) (Sample, error) {
	kind, err := ParseCode(code)
	if err != nil {
		return Sample{}, err
	}
	if len(values) != kind.Arity() {
		return Sample{}, fmt.Errorf("%w: %s expects %d values, got %d", ErrArityMismatch, code, kind.Arity(), len(values))
	}

	action, err := wholeNumber("action", values[0])
	if err != nil {
		return Sample{}, err
	}

	var s Sample
	switch kind {
	case KindRunning:
		s = NewRunning(action, values[1], values[2])
	case KindWalking:
		s = NewWalking(action, values[1], values[2], values[3])
	case KindSwimming:
		laps, err := wholeNumber("pool laps", values[4])
		if err != nil {
			return Sample{}, err
		}
		s = NewSwimming(action, values[1], values[2], values[3], laps)
	}

	if err := s.Validate(); err != nil {
		return Sample{}, err
	}
	return s, nil
}

// Dispatch reads a raw sensor package and computes its report.
func Dispatch(code string, values []float64) (Report, error) {
	s, err := ReadPackage(code, values)
	if err != nil {
		return Report{}, err
	}
	return BuildReport(s), nil
}

// Rejection reasons reported by RejectReason.
const (
	ReasonUnknownCode      = "unknown_code"
	ReasonArityMismatch    = "arity_mismatch"
	ReasonInvalidMagnitude = "invalid_magnitude"
	ReasonOther            = "other"
)

// RejectReason classifies an error returned by ReadPackage, Dispatch or the
// FIT decoders. Errors outside the three sentinels map to ReasonOther.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownActivityCode):
		return ReasonUnknownCode
	case errors.Is(err, ErrArityMismatch):
		return ReasonArityMismatch
	case errors.Is(err, ErrInvalidMagnitude):
		return ReasonInvalidMagnitude
	default:
		return ReasonOther
	}
}

func wholeNumber(field string, v float64) (int, error) {
	if !isFinite(v) {
		return 0, magnitudeError(field, v, "must be finite")
	}
	if v != math.Trunc(v) {
		return 0, magnitudeError(field, v, "must be a whole number")
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, magnitudeError(field, v, "is out of range")
	}
	return int(v), nil
}
