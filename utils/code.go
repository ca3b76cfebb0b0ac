// utils/code.go
package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Ambiguous characters (O/0, I/1, etc.) are excluded on purpose — these codes
// get read out loud at practice and typed from paper handouts.
const codeLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ"

func randomLetters(n int) string {
	b := make([]byte, n)
	for i := range b {
		idx, _ := rand.Int(rand.Reader, big.NewInt(int64(len(codeLetters))))
		b[i] = codeLetters[idx.Int64()]
	}
	return string(b)
}

// GenerateAccessCode returns a short human-shareable code like "AB-123-CD".
// Uniqueness is enforced by the database index, not here.
func GenerateAccessCode() string {
	num, _ := rand.Int(rand.Reader, big.NewInt(1000))
	return fmt.Sprintf("%s-%03d-%s", randomLetters(2), num.Int64(), randomLetters(2))
}
