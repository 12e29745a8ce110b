// Package utils holds gateway helpers shared by all providers.
package utils

import (
	"fmt"
	"strings"

	"makao/pkg/gateway/types"

	"github.com/google/uuid"
)

// FormatPhone normalizes a Kenyan phone number to 254XXXXXXXXX form.
// Accepted inputs: 07XXXXXXXX, 01XXXXXXXX, 7XXXXXXXX, 1XXXXXXXX,
// 2547XXXXXXXX and the same with a leading plus or embedded spaces.
func FormatPhone(phone string) (string, error) {
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.TrimPrefix(phone, "+")

	if phone == "" {
		return "", &types.ValidationError{Field: "phone_number", Reason: "is required"}
	}

	for _, r := range phone {
		if r < '0' || r > '9' {
			return "", &types.ValidationError{Field: "phone_number", Reason: "must contain digits only"}
		}
	}

	switch {
	case len(phone) == 10 && phone[0] == '0' && (phone[1] == '7' || phone[1] == '1'):
		phone = "254" + phone[1:]
	case len(phone) == 9 && (phone[0] == '7' || phone[0] == '1'):
		phone = "254" + phone
	case len(phone) == 12 && strings.HasPrefix(phone, "254"):
		// already normalized
	default:
		return "", &types.ValidationError{Field: "phone_number", Reason: "is not a valid Kenyan number"}
	}

	return phone, nil
}

// NewMerchantReference builds a unique order reference like
// RENT-9F3A2B81C4D0 carrying the payment kind as its prefix.
func NewMerchantReference(kind string) string {
	id := uuid.New()
	return fmt.Sprintf("%s-%X", strings.ToUpper(kind), id[:6])
}
