package sweep

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranavr/chaosmeter/internal/dynamo"
)

func TestGridBuildBasic(t *testing.T) {
	g := GridSpec{Min: 0.1, Max: 0.5, Step: 0.1}
	points, err := g.Build()
	require.NoError(t, err)

	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4, 0.5}, points)
}

// Accumulated float drift must not duplicate or drop endpoint values.
func TestGridBuildNoDrift(t *testing.T) {
	g := GridSpec{Min: 0.1, Max: 0.3, Step: 0.01}
	points, err := g.Build()
	require.NoError(t, err)

	assert.Len(t, points, 21)
	assert.Equal(t, 0.1, points[0])
	assert.Equal(t, 0.3, points[len(points)-1])
}

func TestGridBuildZoneRefinement(t *testing.T) {
	g := GridSpec{
		Min:   0.1,
		Max:   0.5,
		Step:  0.1,
		Zones: []Zone{{From: 0.2, To: 0.3, Step: 0.05}},
	}
	points, err := g.Build()
	require.NoError(t, err)

	// base points plus the one new refinement point, no duplicates
	assert.Equal(t, []float64{0.1, 0.2, 0.25, 0.3, 0.4, 0.5}, points)
}

func TestGridBuildZoneClippedToRange(t *testing.T) {
	g := GridSpec{
		Min:   0.2,
		Max:   0.4,
		Step:  0.1,
		Zones: []Zone{{From: 0.1, To: 0.5, Step: 0.05}},
	}
	points, err := g.Build()
	require.NoError(t, err)

	assert.Equal(t, 0.2, points[0])
	assert.Equal(t, 0.4, points[len(points)-1])
}

func TestGridBuildValidation(t *testing.T) {
	cases := []struct {
		name string
		g    GridSpec
	}{
		{"zero min", GridSpec{Min: 0, Max: 0.5, Step: 0.1}},
		{"negative step", GridSpec{Min: 0.1, Max: 0.5, Step: -0.1}},
		{"max below min", GridSpec{Min: 0.5, Max: 0.1, Step: 0.1}},
		{"bad zone step", GridSpec{Min: 0.1, Max: 0.5, Step: 0.1, Zones: []Zone{{From: 0.2, To: 0.3, Step: 0}}}},
		{"inverted zone", GridSpec{Min: 0.1, Max: 0.5, Step: 0.1, Zones: []Zone{{From: 0.3, To: 0.2, Step: 0.05}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.g.Build()
			require.Error(t, err)
			assert.True(t, errors.Is(err, dynamo.ErrInvalidParameter))
		})
	}
}

func TestGridBuildSinglePoint(t *testing.T) {
	g := GridSpec{Min: 0.19, Max: 0.19, Step: 0.1}
	points, err := g.Build()
	require.NoError(t, err)
	assert.Equal(t, []float64{0.19}, points)
}
