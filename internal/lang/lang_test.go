package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllHasMoreThanTwentyLanguages(t *testing.T) {
	all := All()
	assert.Greater(t, len(all), 20)
	assert.Equal(t, DefaultCode, all[0].Code)

	seen := make(map[string]bool)
	for _, l := range all {
		assert.False(t, seen[l.Code], "duplicate code %s", l.Code)
		seen[l.Code] = true
		assert.NotEmpty(t, l.SpeechLocale, "missing speech locale for %s", l.Code)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0].Code = "xx"
	assert.Equal(t, DefaultCode, All()[0].Code)
}

func TestLookup(t *testing.T) {
	testCases := []struct {
		name string
		code string
		want string
		ok   bool
	}{
		{"exact", "hi", "Hindi", true},
		{"upper case", "TA", "Tamil", true},
		{"region suffix", "bn-IN", "Bengali", true},
		{"underscore suffix", "kok_IN", "Konkani", true},
		{"unknown", "fr", "", false},
		{"empty", "", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l, ok := Lookup(tc.code)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, l.Name)
		})
	}
}

func TestSpeechLocale(t *testing.T) {
	assert.Equal(t, "ml-IN", SpeechLocale("ml"))
	assert.Equal(t, "en-IN", SpeechLocale("zz"))
}
