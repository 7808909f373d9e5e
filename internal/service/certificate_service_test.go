package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCertificateNumberFormat(t *testing.T) {
	courseID := uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000")
	issuedAt := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)

	number := certificateNumber(issuedAt, courseID, 42, "ABC234")
	assert.Equal(t, "CERT-2026-A1B2C3D4-42-ABC234", number)

	parts := strings.Split(number, "-")
	require.Len(t, parts, 5)
	assert.Equal(t, "CERT", parts[0])
	assert.Len(t, parts[2], 8)
}

func TestRandomSuffixAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		suffix := randomSuffix()
		require.Len(t, suffix, 6)
		for _, r := range suffix {
			assert.Contains(t, suffixAlphabet, string(r),
				fmt.Sprintf("suffix %q contains %q outside the alphabet", suffix, r))
		}
	}
}

func TestSuffixAlphabetOmitsConfusableCharacters(t *testing.T) {
	for _, banned := range []string{"0", "O", "1", "I", "L"} {
		assert.NotContains(t, suffixAlphabet, banned)
	}
}
