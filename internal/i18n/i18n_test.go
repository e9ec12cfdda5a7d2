package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(s string) *string { return &s }

func TestNormalizeLang(t *testing.T) {
	tests := map[string]string{
		"en":             "en",
		"EN-gb":          "en",
		"en-US,en;q=0.9": "en",
		"ar_MA":          "ar",
		"fr-FR":          "fr",
		"es":             "fr",
		"":               "fr",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeLang(in), in)
	}
}

func TestFallback(t *testing.T) {
	assert.Equal(t, "Massage", Fallback(ptr("Massage"), "Massage relaxant"))
	assert.Equal(t, "Massage relaxant", Fallback(nil, "Massage relaxant"))
	assert.Equal(t, "Massage relaxant", Fallback(ptr(""), "Massage relaxant"))
	assert.Equal(t, "Massage relaxant", Fallback(ptr("   "), "Massage relaxant"))
}

func TestFallbackPtr(t *testing.T) {
	base := ptr("base")
	assert.Equal(t, base, FallbackPtr(nil, base))
	assert.Equal(t, "en", *FallbackPtr(ptr("en"), base))
	assert.Nil(t, FallbackPtr(ptr(""), nil))
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("EN"))
	assert.False(t, IsSupported("de"))
}
