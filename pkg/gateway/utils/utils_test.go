package utils

import (
	"strings"
	"testing"

	"makao/pkg/gateway/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0712345678", "254712345678"},
		{"0112345678", "254112345678"},
		{"712345678", "254712345678"},
		{"112345678", "254112345678"},
		{"254712345678", "254712345678"},
		{"+254712345678", "254712345678"},
		{"0712 345 678", "254712345678"},
	}

	for _, tc := range cases {
		got, err := FormatPhone(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestFormatPhoneRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "07123", "07123456789012", "07a2345678", "123456789012", "0812345678"} {
		_, err := FormatPhone(in)
		require.Error(t, err, "input %q", in)

		var ve *types.ValidationError
		assert.ErrorAs(t, err, &ve, "input %q", in)
	}
}

func TestNewMerchantReference(t *testing.T) {
	ref := NewMerchantReference("rent")

	assert.True(t, strings.HasPrefix(ref, "RENT-"))
	assert.Len(t, ref, len("RENT-")+12)

	other := NewMerchantReference("rent")
	assert.NotEqual(t, ref, other)
}
