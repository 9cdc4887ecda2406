package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "recipient list with duplicates and padding",
			input:    []string{" broker-ops ", "underwriting", "broker-ops", "", "  "},
			expected: []string{"broker-ops", "underwriting"},
		},
		{
			name:     "order preserved",
			input:    []string{"c", "a", "b", "a"},
			expected: []string{"c", "a", "b"},
		},
		{
			name:     "case sensitive",
			input:    []string{"Alpha", "alpha"},
			expected: []string{"Alpha", "alpha"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestDedupeAndTrimFold(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "country codes folded",
			input:    []string{" RU ", "ru", "IR", "kp"},
			expected: []string{"ru", "ir", "kp"},
		},
		{
			name:     "empties dropped",
			input:    []string{"", "  ", "GB"},
			expected: []string{"gb"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrimFold(tt.input))
		})
	}
}
