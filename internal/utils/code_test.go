package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfirmCode_LengthAndAlphabet(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := NewConfirmCode()
		require.NoError(t, err)
		require.Len(t, code, ConfirmCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r),
				"code %q contains %q, not in alphabet", code, r)
		}
	}
}

func TestNewConfirmCode_ExcludesConfusablePairs(t *testing.T) {
	for _, r := range "0O1I" {
		assert.False(t, strings.ContainsRune(codeAlphabet, r))
	}
}

func TestNewConfirmCode_NoImmediateRepeats(t *testing.T) {
	seen := make(map[string]bool, 500)
	for i := 0; i < 500; i++ {
		code, err := NewConfirmCode()
		require.NoError(t, err)
		require.False(t, seen[code], "duplicate code %q after %d draws", code, i)
		seen[code] = true
	}
}
