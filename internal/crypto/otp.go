package crypto

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

// OTPLength is the number of digits in a verification code.
const OTPLength = 6

// GenerateOTP returns a uniformly random 6-digit verification code in the
// range 100000-999999, using crypto/rand.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
