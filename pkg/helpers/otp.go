package helpers

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// OTPLength is the number of digits in verification and reset codes.
const OTPLength = 6

// GenOTPCode generates a uniformly random numeric code of OTPLength
// digits, zero padded.
func GenOTPCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < OTPLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", OTPLength, n), nil
}

// OTPExpiry returns the moment a code issued now stops being accepted.
func OTPExpiry(now time.Time, ttl time.Duration) time.Time {
	return now.Add(ttl).UTC()
}
