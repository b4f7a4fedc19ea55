package cgos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectation(t *testing.T) {
	assert.Equal(t, 0.5, Expectation(1500, 1500))

	// Expectations of the two sides always sum to one.
	for _, d := range []float64{10, 100, 400, 1000} {
		e1 := Expectation(1500+d, 1500)
		e2 := Expectation(1500, 1500+d)
		assert.InDelta(t, 1.0, e1+e2, 1e-9)
		assert.Greater(t, e1, 0.5)
	}

	// A 400 point gap predicts about ten to one odds.
	assert.InDelta(t, 10.0/11.0, Expectation(1900, 1500), 1e-9)
}

func TestNewRating(t *testing.T) {
	// An even win with K=20 gains ten points, a loss costs ten.
	assert.InDelta(t, 1510, NewRating(1500, 1500, Win, 20), 1e-9)
	assert.InDelta(t, 1490, NewRating(1500, 1500, Loss, 20), 1e-9)
	assert.InDelta(t, 1500, NewRating(1500, 1500, Draw, 20), 1e-9)

	// Beating a much stronger opponent pays almost the full K.
	gain := NewRating(1000, 2000, Win, 32) - 1000
	assert.Greater(t, gain, 31.0)
}

func TestFormatRating(t *testing.T) {
	for _, test := range []struct {
		r    float64
		k    float64
		want string
	}{
		{1910.4, 32, "1910?"},
		{1910.4, 16, "1910"},
		{1910.6, 16, "1911"},
		{-3.0, 16, "0"},
		{-3.0, 90, "0?"},
		{0, 16, "0"},
	} {
		assert.Equal(t, test.want, FormatRating(test.r, test.k),
			"FormatRating(%v, %v)", test.r, test.k)
	}
}
