package ftracker

import (
	"fmt"
	"strings"
)

// Report contains the derived metrics of one workout.
type Report struct {
	Kind       string  `json:"kind"`
	DurationH  float64 `json:"duration_h"`
	DistanceKM float64 `json:"distance_km"`
	SpeedKMH   float64 `json:"speed_kmh"`
	Calories   float64 `json:"calories_kcal"`
}

// Message renders the report as a single line with three decimals per value.
func (r Report) Message() string {
	return fmt.Sprintf(
		"Тип тренировки: %s; Длительность: %.3f ч.; Дистанция: %.3f км; Ср. скорость: %.3f км/ч; Потрачено ккал: %.3f.",
		r.Kind,
		r.DurationH,
		r.DistanceKM,
		r.SpeedKMH,
		r.Calories,
	)
}

func (r Report) String() string { return r.Message() }

// BuildSummary renders a batch of outcomes: one message line per successful
// input, one error line per rejected input and a totals footer.
func BuildSummary(outcomes []Outcome) string {
	var b strings.Builder

	var (
		ok         int
		distanceKM float64
		calories   float64
		durationH  float64
	)
	for _, o := range outcomes {
		if !o.OK() {
			fmt.Fprintf(&b, "#%d %s: %v\n", o.Index+1, o.Source(), o.Err)
			continue
		}
		b.WriteString(o.Report.Message())
		b.WriteByte('\n')
		ok++
		distanceKM += o.Report.DistanceKM
		calories += o.Report.Calories
		durationH += o.Report.DurationH
	}

	if len(outcomes) > 1 {
		fmt.Fprintf(
			&b,
			"Total: %d of %d workouts | %.3f h | %.3f km | %.3f kcal\n",
			ok,
			len(outcomes),
			durationH,
			distanceKM,
			calories,
		)
	}

	return strings.TrimSpace(b.String())
}
