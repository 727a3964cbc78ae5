package shortener

import (
	"crypto/rand"
	"math/big"
)

// CodeAlphabet is the set of characters used in generated short codes.
const CodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultCodeLength gives 62^7 (about 3.5 billion) possible codes.
const DefaultCodeLength = 7

var alphabetSize = big.NewInt(int64(len(CodeAlphabet)))

// generateCode returns a uniformly random code of the given length.
func generateCode(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		b[i] = CodeAlphabet[n.Int64()]
	}
	return string(b), nil
}

// reservedCodes collide with fixed routes and are never handed out.
var reservedCodes = map[string]struct{}{
	"health":  {},
	"ready":   {},
	"version": {},
	"metrics": {},
	"shorten": {},
	"stats":   {},
}

// Reserved reports whether code is shadowed by a fixed route.
func Reserved(code string) bool {
	_, ok := reservedCodes[code]
	return ok
}

// ValidCode reports whether s could be a generated code of any length.
// Used to reject obviously bogus paths before touching the store.
func ValidCode(s string) bool {
	if s == "" || len(s) > 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
