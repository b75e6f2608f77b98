package ftracker

import "math"

// Calorie formula coefficients.
const (
	runningSpeedMultiplier = 18.0
	runningSpeedShift      = 20.0

	walkingWeightMultiplier = 0.035
	walkingSpeedMultiplier  = 0.029
	walkingSpeedExponent    = 2.0

	swimmingSpeedShift       = 1.1
	swimmingWeightMultiplier = 2.0
)

// Distance returns the covered distance in kilometers.
func Distance(s Sample) float64 {
	return float64(s.Action) * s.Kind.StepLengthM() / mInKm
}

// MeanSpeed returns the average speed in km/h.
//
// Swimming speed comes from the pool geometry, not from the stroke count.
func MeanSpeed(s Sample) float64 {
	if s.DurationH <= 0 {
		return 0
	}
	if s.Kind == KindSwimming {
		return s.PoolLengthM * float64(s.PoolLaps) / mInKm / s.DurationH
	}
	return Distance(s) / s.DurationH
}

// Calories returns the spent energy in kcal.
func Calories(s Sample) float64 {
	speed := MeanSpeed(s)
	switch s.Kind {
	case KindRunning:
		durationMin := s.DurationH * minInHour
		kcal := (runningSpeedMultiplier*speed - runningSpeedShift) * s.WeightKG / mInKm * durationMin
		// below ~1.1 km/h the running formula goes negative.
		return math.Max(kcal, 0)
	case KindWalking:
		durationMin := s.DurationH * minInHour
		// floor division, not a plain quotient.
		heightTerm := math.Floor(math.Pow(speed, walkingSpeedExponent) / s.HeightCM)
		return (walkingWeightMultiplier*s.WeightKG + heightTerm*walkingSpeedMultiplier*s.WeightKG) * durationMin
	case KindSwimming:
		return (speed + swimmingSpeedShift) * swimmingWeightMultiplier * s.WeightKG
	default:
		return 0
	}
}

// BuildReport computes all metrics for s. It does not validate s; use
// Dispatch or Sample.Validate for untrusted input.
func BuildReport(s Sample) Report {
	return Report{
		Kind:       s.Kind.Label(),
		DurationH:  s.DurationH,
		DistanceKM: Distance(s),
		SpeedKMH:   MeanSpeed(s),
		Calories:   Calories(s),
	}
}
