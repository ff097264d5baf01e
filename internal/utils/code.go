package utils // confirmation code generation for donation records

import (
	"crypto/rand"
	"errors"
)

// codeAlphabet is the character set for donation confirmation codes.
// Uppercase letters and digits only, minus the easily confused 0/O and
// 1/I pairs: the code travels out-of-band on a phone screen and gets
// retyped by a nurse. Validation on submission checks length only, so
// codes created before the alphabet was narrowed still confirm.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ConfirmCodeLength is the fixed length of every confirmation code.
// Submissions of any other length are rejected before touching the store.
const ConfirmCodeLength = 6

// ErrCodeGeneration is returned when the random source fails.
var ErrCodeGeneration = errors.New("confirm code generation failed")

// NewConfirmCode returns a fresh 6-character confirmation code drawn
// from codeAlphabet using crypto/rand. With 32^6 (~1.07e9) possible
// values collisions among outstanding records are unlikely, but callers
// still verify the code against non-terminal records before committing.
func NewConfirmCode() (string, error) {
	buf := make([]byte, ConfirmCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", ErrCodeGeneration
	}
	out := make([]byte, ConfirmCodeLength)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}
