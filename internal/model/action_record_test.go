package model

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateError(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Short message is kept", input: "Sin cupo", expected: "Sin cupo"},
		{name: "Exact length is kept", input: strings.Repeat("a", MaxErrorLength), expected: strings.Repeat("a", MaxErrorLength)},
		{name: "ASCII is cut at the limit", input: strings.Repeat("a", MaxErrorLength+3), expected: strings.Repeat("a", MaxErrorLength)},
		{name: "Two-byte rune across the limit is dropped", input: strings.Repeat("a", MaxErrorLength-1) + "ñb", expected: strings.Repeat("a", MaxErrorLength-1)},
		{name: "Three-byte rune across the limit is dropped", input: strings.Repeat("a", MaxErrorLength-2) + "€", expected: strings.Repeat("a", MaxErrorLength-2)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := TruncateError(tc.input)
			assert.Equal(t, tc.expected, got)
			assert.LessOrEqual(t, len(got), MaxErrorLength)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
