// Package ftracker computes distance, mean speed and spent calories for
// running, sports walking and swimming sessions from raw sensor readings.
package ftracker

import (
	"fmt"
	"math"
)

const (
	mInKm      = 1000.0
	minInHour  = 60.0
	stepLength = 0.65
	// swimming counts strokes, not steps.
	strokeLength = 1.38
)

// Kind identifies one of the supported workout types.
type Kind uint8

const (
	KindRunning Kind = iota + 1
	KindWalking
	KindSwimming
)

// kindParams holds the fixed per-kind parameters.
type kindParams struct {
	code        string
	label       string
	arity       int
	stepLengthM float64
}

var kindTable = map[Kind]kindParams{
	KindRunning:  {code: "RUN", label: "Running", arity: 3, stepLengthM: stepLength},
	KindWalking:  {code: "WLK", label: "SportsWalking", arity: 4, stepLengthM: stepLength},
	KindSwimming: {code: "SWM", label: "Swimming", arity: 5, stepLengthM: strokeLength},
}

// Kinds returns the supported workout kinds.
func Kinds() []Kind {
	return []Kind{KindRunning, KindWalking, KindSwimming}
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}

// Code returns the short sensor code (RUN, WLK, SWM).
func (k Kind) Code() string { return kindTable[k].code }

// Label returns the display name used in reports.
func (k Kind) Label() string { return kindTable[k].label }

// Arity returns how many raw values a sensor package of this kind carries.
func (k Kind) Arity() int { return kindTable[k].arity }

// StepLengthM returns the distance in meters covered by one action.
func (k Kind) StepLengthM() float64 { return kindTable[k].stepLengthM }

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return k.Label()
}

// Sample is one workout session as reported by the sensors.
//
// HeightCM is only meaningful for walking, PoolLengthM and PoolLaps only for
// swimming. Build samples with NewRunning, NewWalking or NewSwimming.
type Sample struct {
	Kind        Kind    `json:"kind"`
	Action      int     `json:"action"`
	DurationH   float64 `json:"duration_h"`
	WeightKG    float64 `json:"weight_kg"`
	HeightCM    float64 `json:"height_cm,omitempty"`
	PoolLengthM float64 `json:"pool_length_m,omitempty"`
	PoolLaps    int     `json:"pool_laps,omitempty"`
}

// NewRunning builds a running sample.
func NewRunning(action int, durationH, weightKG float64) Sample {
	return Sample{Kind: KindRunning, Action: action, DurationH: durationH, WeightKG: weightKG}
}

// NewWalking builds a sports walking sample. height is in centimeters.
func NewWalking(action int, durationH, weightKG, heightCM float64) Sample {
	return Sample{Kind: KindWalking, Action: action, DurationH: durationH, WeightKG: weightKG, HeightCM: heightCM}
}

// NewSwimming builds a swimming sample. poolLengthM is the length of one pool
// lap in meters and poolLaps is the number of laps swum.
func NewSwimming(action int, durationH, weightKG, poolLengthM float64, poolLaps int) Sample {
	return Sample{
		Kind:        KindSwimming,
		Action:      action,
		DurationH:   durationH,
		WeightKG:    weightKG,
		PoolLengthM: poolLengthM,
		PoolLaps:    poolLaps,
	}
}

// Validate checks the magnitudes the formulas depend on. The returned error
// wraps ErrInvalidMagnitude (or ErrUnknownActivityCode for a zero Kind).
func (s Sample) Validate() error {
	if !s.Kind.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownActivityCode, s.Kind)
	}
	if s.Action < 0 {
		return magnitudeError("action", float64(s.Action), "must not be negative")
	}
	if err := positive("duration", s.DurationH); err != nil {
		return err
	}
	if err := positive("weight", s.WeightKG); err != nil {
		return err
	}
	switch s.Kind {
	case KindWalking:
		if err := positive("height", s.HeightCM); err != nil {
			return err
		}
	case KindSwimming:
		if err := positive("pool length", s.PoolLengthM); err != nil {
			return err
		}
		if s.PoolLaps <= 0 {
			return magnitudeError("pool laps", float64(s.PoolLaps), "must be positive")
		}
	}
	return nil
}

func positive(field string, v float64) error {
	if !isFinite(v) {
		return magnitudeError(field, v, "must be finite")
	}
	if v <= 0 {
		return magnitudeError(field, v, "must be positive")
	}
	return nil
}

func magnitudeError(field string, v float64, reason string) error {
	return fmt.Errorf("%w: %s %v %s", ErrInvalidMagnitude, field, v, reason)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
