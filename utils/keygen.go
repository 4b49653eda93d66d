package utils

import (
	"crypto/rand"
	"math/big"
)

// RSVPLinkLength is the length of a generated RSVP link token. With a
// 62-symbol alphabet the keyspace is 62^10, so collisions against a guest
// list of even a few thousand rows are vanishingly rare.
const RSVPLinkLength = 10

const keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RandomKey returns a random token of the given length drawn uniformly
// from uppercase letters, lowercase letters and digits. The token doubles
// as a credential (it is the only thing protecting a guest's RSVP page),
// so it is drawn from crypto/rand.
func RandomKey(length int) (string, error) {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(keyAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = keyAlphabet[n.Int64()]
	}
	return string(buf), nil
}
