package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// ReferralCodeBytes is the number of random bytes behind a referral code
const ReferralCodeBytes = 4

// GenerateReferralCode returns 8 upper-case hex characters
func GenerateReferralCode() (string, error) {
	b := make([]byte, ReferralCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// NormalizeCode trims and upper-cases a referral or promo code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
