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
			name:     "single element",
			input:    []string{"broker-a:9092"},
			expected: []string{"broker-a:9092"},
		},
		{
			name:     "trims whitespace",
			input:    []string{"  broker-a:9092  ", "broker-b:9092 "},
			expected: []string{"broker-a:9092", "broker-b:9092"},
		},
		{
			name:     "drops duplicates preserving first-seen order",
			input:    []string{"b:9092", "a:9092", "b:9092", "c:9092", "a:9092"},
			expected: []string{"b:9092", "a:9092", "c:9092"},
		},
		{
			name:     "drops blanks",
			input:    []string{"broker-a:9092", "", "  ", "broker-b:9092"},
			expected: []string{"broker-a:9092", "broker-b:9092"},
		},
		{
			name:     "trailing comma artifact from env parsing",
			input:    []string{"broker-a:9092", " broker-a:9092", ""},
			expected: []string{"broker-a:9092"},
		},
		{
			name:     "case is preserved",
			input:    []string{"Broker:9092", "broker:9092"},
			expected: []string{"Broker:9092", "broker:9092"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
