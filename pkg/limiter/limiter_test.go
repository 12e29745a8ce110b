package limiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLimit(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"5-S", 5},
		{"60-M", 1},
		{"3600-H", 1},
		{"86400-D", 1},
	}

	for _, tc := range cases {
		r, err := ParseLimit(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.InDelta(t, tc.want, r.Rate, 0.0001, "input %q", tc.in)
	}
}

func TestParseLimitRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "5", "5-X", "x-S", "5-S-extra"} {
		_, err := ParseLimit(in)
		assert.Error(t, err, "input %q", in)
	}
}
