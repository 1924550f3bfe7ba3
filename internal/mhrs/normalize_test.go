package mhrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDottedI(t *testing.T) {
	assert.Equal(t, "izmir", NormalizeLower("İZMİR"))
	assert.Equal(t, "İZMİR", NormalizeUpper("izmir"))
	assert.Equal(t, "CİLDİYE", NormalizeUpper("  cildiye "))
	assert.Equal(t, "eylem", NormalizeLower("EYLEM"))
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"24:00", "24:00"},
		{"24;00", "24:00"},
		{"24.00", "24:00"},
		{"24,00", "24:00"},
		{"9:5", "09:05"},
		{"11", "11:00"},
		{" 15:40 ", "15:40"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeTime(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := NormalizeTime(got)
			require.NoError(t, err)
			assert.Equal(t, got, again, "normalization must be idempotent")
		})
	}
}

func TestNormalizeTime_Invalid(t *testing.T) {
	for _, in := range []string{"", "ab:cd", "11:xx", "-1:00", "10:75"} {
		_, err := NormalizeTime(in)
		assert.ErrorIs(t, err, ErrInvalidTime, in)
	}
}

func TestParseMainHour(t *testing.T) {
	assert.Equal(t, "11", ParseMainHour("11"))
	assert.Equal(t, "16", ParseMainHour("16:20"))
	assert.Equal(t, "9", ParseMainHour(" 9.40 "))
	assert.Equal(t, "08", ParseMainHour("08;00"))
}

func TestSameHour(t *testing.T) {
	assert.True(t, sameHour("09:00", "9"))
	assert.True(t, sameHour("15", "15"))
	assert.False(t, sameHour("11:00", "1"))
	assert.False(t, sameHour("16:00", "15"))
}
