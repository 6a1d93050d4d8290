package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranavr/chaosmeter/internal/dynamo"
	"github.com/pranavr/chaosmeter/internal/thomas"
)

func TestZeroOneTestRejectsShortSeries(t *testing.T) {
	_, err := ZeroOneTest(make([]float64, 50))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestZeroOneTestRejectsNaN(t *testing.T) {
	series := make([]float64, 500)
	series[250] = math.NaN()
	_, err := ZeroOneTest(series)
	assert.Error(t, err)
}

func TestZeroOneTestSineIsRegular(t *testing.T) {
	series := make([]float64, 2000)
	for i := range series {
		series[i] = math.Sin(0.7 * float64(i))
	}

	res, err := ZeroOneTest(series)
	require.NoError(t, err)

	assert.Less(t, res.K, 0.1, "pure sine should score K near 0")
	assert.Equal(t, ClassRegular, res.Class)
}

func TestZeroOneTestLogisticMapIsChaotic(t *testing.T) {
	series := make([]float64, 2000)
	x := 0.2
	for i := range series {
		x = 4 * x * (1 - x)
		series[i] = x
	}

	res, err := ZeroOneTest(series)
	require.NoError(t, err)

	assert.Greater(t, res.K, 0.9, "fully chaotic logistic map should score K near 1")
	assert.Equal(t, ClassChaotic, res.Class)
}

// The x-coordinate of the chaotic Thomas attractor, sampled once per
// characteristic time, must classify as chaotic.
func TestZeroOneTestThomasSeries(t *testing.T) {
	m, err := thomas.NewModel(0.19, 0.005, dynamo.State{0.1, 0, 0})
	require.NoError(t, err)

	// transient
	for i := 0; i < 2000; i++ {
		m.Step()
	}

	const (
		samples = 2000
		stride  = 100 // 0.5 time units between samples
	)
	series := make([]float64, 0, samples)
	for len(series) < samples {
		var last dynamo.State
		for s := 0; s < stride; s++ {
			last = m.Step().Position
		}
		series = append(series, last[0])
	}

	res, err := ZeroOneTest(series)
	require.NoError(t, err)

	assert.Greater(t, res.K, 0.9)
	assert.Equal(t, ClassChaotic, res.Class)
}

func TestZeroOneClassString(t *testing.T) {
	assert.Equal(t, "regular", ClassRegular.String())
	assert.Equal(t, "indeterminate", ClassIndeterminate.String())
	assert.Equal(t, "chaotic", ClassChaotic.String())
}
