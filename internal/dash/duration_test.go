package dash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"PT0H0M60.000S", 60},
		{"PT8S", 8},
		{"PT12.5S", 12.5},
		{"PT1H", 3600},
		{"PT1M30S", 90},
		{"P1D", 86400},
		{"P1DT1S", 86401},
		{"P1W", 604800},
		{"P1Y", 365 * 86400},
		{"P1M", 30 * 86400},
		{"PT0,5S", 0.5},
		{"PT0S", 0},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseDuration(c.in)
			require.NoError(t, err)
			assert.InDelta(t, c.want, got, 1e-9)
		})
	}
}

func TestParseDurationInvalid(t *testing.T) {
	for _, in := range []string{"", "P", "PT", "P1DT", "5s", "PT-1S", "1H", "PTxS", "PT1S2M"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDuration(in)
			assert.ErrorIs(t, err, ErrInvalidDuration)
		})
	}
}
