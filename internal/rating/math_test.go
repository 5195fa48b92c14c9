package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedScore(t *testing.T) {
	tests := []struct {
		name     string
		ratingA  float64
		ratingB  float64
		expected float64
	}{{
		"equal ratings are an exact coin flip",
		1200,
		1200,
		0.5,
	}, {
		"400 points ahead is about 10 to 1",
		1600,
		1200,
		10.0 / 11.0,
	}, {
		"400 points behind is the mirror",
		1200,
		1600,
		1.0 / 11.0,
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.InDelta(t, test.expected, ExpectedScore(test.ratingA, test.ratingB), 1e-12)
		})
	}
}

func TestExpectedScoreEqualIsExactlyHalf(t *testing.T) {
	assert.Equal(t, 0.5, ExpectedScore(1400, 1400))
}

func TestRatingForLevel(t *testing.T) {
	tests := []struct {
		level    float64
		expected float64
	}{
		{2.5, 1000},
		{3.0, 1200},
		{1.0, 400},
		{7.0, 2800},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, RatingForLevel(test.level))
	}
}

func TestClampLevel(t *testing.T) {
	assert.Equal(t, 1.0, ClampLevel(0.4))
	assert.Equal(t, 7.0, ClampLevel(9.2))
	assert.Equal(t, 3.7, ClampLevel(3.7))
}
