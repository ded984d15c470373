// Package claimcode issues the pickup codes members present to staff.
//
// Codes are 10 symbols of Crockford base32 printed as two groups of five,
// e.g. "7KQ2M-XD94A". That gives 50 random bits per code; the database unique
// constraint is still the final word on collisions.
package claimcode

import (
	"crypto/rand"
	"strings"
)

const (
	alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"
	Length   = 10
	group    = 5
)

// Generate returns a new random claim code.
func Generate() (string, error) {
	b := make([]byte, Length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	out := make([]byte, 0, Length+1)
	for i, v := range b {
		if i == group {
			out = append(out, '-')
		}
		// 256 is a multiple of 32, so masking keeps the distribution uniform.
		out = append(out, alphabet[v&31])
	}
	return string(out), nil
}

// Normalize turns what a person typed into the stored form: upper case,
// separators dropped, and the Crockford look-alikes (O, I, L) folded.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		switch {
		case r == 'O':
			b.WriteByte('0')
		case r == 'I' || r == 'L':
			b.WriteByte('1')
		case (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		}
	}
	raw := b.String()
	if len(raw) != Length {
		return raw
	}
	return raw[:group] + "-" + raw[group:]
}
