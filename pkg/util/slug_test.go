package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple latin name",
			input:    "Cafe Roma",
			expected: "cafe-roma",
		},
		{
			name:     "Uppercase is lowered",
			input:    "PIZZA House",
			expected: "pizza-house",
		},
		{
			name:     "Persian name keeps letters",
			input:    "کافه رما",
			expected: "کافه-رما",
		},
		{
			name:     "Mixed punctuation collapses",
			input:    "Ali's  Shop!!",
			expected: "ali-s-shop",
		},
		{
			name:     "Leading and trailing separators trimmed",
			input:    "  -- best shop -- ",
			expected: "best-shop",
		},
		{
			name:     "Digits survive",
			input:    "Burger 24",
			expected: "burger-24",
		},
		{
			name:     "Only symbols yields empty",
			input:    "!!! ???",
			expected: "",
		},
		{
			name:     "Empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "Existing hyphens preserved",
			input:    "coffee-to-go",
			expected: "coffee-to-go",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}
