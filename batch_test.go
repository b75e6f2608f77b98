package ftracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplePackages(t *testing.T) {
	outcomes := ProcessBatch(SamplePackages())
	require.Len(t, outcomes, 3)
	assert.Empty(t, Failed(outcomes))

	msgs := Messages(outcomes)
	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[0], "Swimming")
	assert.Contains(t, msgs[1], "Running")
	assert.Contains(t, msgs[2], "SportsWalking")
}

func TestProcessBatchErrorsAreIndependent(t *testing.T) {
	outcomes := ProcessBatch([]Package{
		{Code: "XYZ", Values: []float64{1, 2, 3}},
		{Code: "RUN", Values: []float64{15000, 1}},
		{Code: "SWM", Values: []float64{720, 1, 80, 25, 40}},
		{Code: "WLK", Values: []float64{9000, 0, 75, 180}},
		{Code: "RUN", Values: []float64{15000, 1, 75}},
	})
	require.Len(t, outcomes, 5)

	assert.ErrorIs(t, outcomes[0].Err, ErrUnknownActivityCode)
	assert.ErrorIs(t, outcomes[1].Err, ErrArityMismatch)
	assert.True(t, outcomes[2].OK())
	assert.ErrorIs(t, outcomes[3].Err, ErrInvalidMagnitude)
	assert.True(t, outcomes[4].OK())

	for i, o := range outcomes {
		assert.Equal(t, i, o.Index)
		if o.OK() {
			assert.NoError(t, o.Err)
		} else {
			assert.Nil(t, o.Report)
		}
	}

	assert.Len(t, Failed(outcomes), 3)
	assert.Equal(t, []string{outcomes[2].Report.Message(), outcomes[4].Report.Message()}, Messages(outcomes))
}

func TestProcessBatchEmpty(t *testing.T) {
	assert.Empty(t, ProcessBatch(nil))
	assert.Empty(t, Messages(nil))
}

func TestOutcomeSource(t *testing.T) {
	assert.Equal(t, "run.fit", Outcome{Path: "run.fit", Package: Package{Code: "RUN"}}.Source())
	assert.Equal(t, "SWM", Outcome{Package: Package{Code: "SWM"}}.Source())
	assert.Equal(t, "<empty code>", Outcome{}.Source())
}
