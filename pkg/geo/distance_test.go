package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_Symmetric(t *testing.T) {
	points := [][2]float64{
		{28.6139, 77.2090},   // New Delhi
		{19.0760, 72.8777},   // Mumbai
		{12.9716, 77.5946},   // Bengaluru
		{-33.8688, 151.2093}, // Sydney
		{0, 0},
	}

	for _, a := range points {
		for _, b := range points {
			assert.Equal(t, Distance(a[0], a[1], b[0], b[1]), Distance(b[0], b[1], a[0], a[1]))
		}
	}
}

func TestDistance_SamePointIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Distance(28.6139, 77.2090, 28.6139, 77.2090))
	assert.Equal(t, 0.0, Distance(-90, 0, -90, 0))
}

func TestDistance_RoundedToOneDecimal(t *testing.T) {
	d := Distance(28.6139, 77.2090, 19.0760, 72.8777)

	assert.Equal(t, 1148.1, d)
	assert.Equal(t, RoundTenth(d), d)
}

func TestDistance_OneDegreeOfLatitude(t *testing.T) {
	// 2*pi*6371/360
	assert.Equal(t, 111.2, Distance(0, 0, 1, 0))
}

func TestRoundTenth(t *testing.T) {
	assert.Equal(t, 2.0, RoundTenth(1.96))
	assert.Equal(t, 1.9, RoundTenth(1.94))
	assert.Equal(t, 0.0, RoundTenth(0.04))
}
