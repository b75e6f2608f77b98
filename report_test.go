package ftracker

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportMessage(t *testing.T) {
	tests := []struct {
		name string
		code string
		vals []float64
		want string
	}{
		{
			name: "running",
			code: "RUN",
			vals: []float64{15000, 1, 75},
			want: "Тип тренировки: Running; Длительность: 1.000 ч.; Дистанция: 9.750 км; Ср. скорость: 9.750 км/ч; Потрачено ккал: 699.750.",
		},
		{
			name: "walking",
			code: "WLK",
			vals: []float64{9000, 1, 75, 180},
			want: "Тип тренировки: SportsWalking; Длительность: 1.000 ч.; Дистанция: 5.850 км; Ср. скорость: 5.850 км/ч; Потрачено ккал: 157.500.",
		},
		{
			name: "swimming",
			code: "SWM",
			vals: []float64{720, 1, 80, 25, 40},
			want: "Тип тренировки: Swimming; Длительность: 1.000 ч.; Дистанция: 0.994 км; Ср. скорость: 1.000 км/ч; Потрачено ккал: 336.000.",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Dispatch(tc.code, tc.vals)
			require.NoError(t, err)
			assert.Equal(t, tc.want, r.Message())
			assert.Equal(t, tc.want, r.String())
		})
	}
}

func TestReportMessageRoundsToThreeDecimals(t *testing.T) {
	r := Report{Kind: "Running", DurationH: 0.5, DistanceKM: 1.23456, SpeedKMH: 2.46912, Calories: 10.0004}
	msg := r.Message()

	assert.Contains(t, msg, "Длительность: 0.500 ч.")
	assert.Contains(t, msg, "Дистанция: 1.235 км")
	assert.Contains(t, msg, "Ср. скорость: 2.469 км/ч")
	assert.True(t, strings.HasSuffix(msg, "Потрачено ккал: 10.000."))
}

func TestBuildSummary(t *testing.T) {
	outcomes := ProcessBatch([]Package{
		{Code: "RUN", Values: []float64{15000, 1, 75}},
		{Code: "XYZ", Values: []float64{1}},
		{Code: "WLK", Values: []float64{9000, 1, 75, 180}},
	})

	summary := BuildSummary(outcomes)
	lines := strings.Split(summary, "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, outcomes[0].Report.Message(), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "#2 XYZ: unknown activity code"), lines[1])
	assert.Equal(t, outcomes[2].Report.Message(), lines[2])
	assert.Equal(t, "Total: 2 of 3 workouts | 2.000 h | 15.600 km | 857.250 kcal", lines[3])
}

func TestBuildSummarySingleOutcome(t *testing.T) {
	r := BuildReport(NewSwimming(720, 1, 80, 25, 40))
	summary := BuildSummary([]Outcome{{Report: &r}})

	assert.Equal(t, r.Message(), summary)
}

func TestBuildSummaryEmptyCode(t *testing.T) {
	summary := BuildSummary([]Outcome{{Err: errors.New("boom")}})
	assert.Equal(t, "#1 <empty code>: boom", summary)
}
