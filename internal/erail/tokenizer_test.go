package erail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitBlocks(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{
			name:     "Empty input",
			raw:      "",
			expected: []string{},
		},
		{
			name:     "Blank blocks dropped",
			raw:      "a~b~~~~~~~~   ~~~~~~~~c~d",
			expected: []string{"a~b", "c~d"},
		},
		{
			name:     "Nine tildes keep the extra one",
			raw:      "a~~~~~~~~~^b",
			expected: []string{"a", "~^b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitBlocks(tt.raw))
		})
	}
}

func TestFields(t *testing.T) {
	assert.Equal(t, []string{"12951", "Rajdhani", " "}, Fields("~12951~~Rajdhani~ ~"))
	assert.Equal(t, []string{"12951", "Rajdhani"}, NonBlankFields("~12951~~Rajdhani~ ~"))
	assert.Nil(t, Fields(""))
}

func TestField(t *testing.T) {
	fields := []string{"a", "b"}
	assert.Equal(t, "b", field(fields, 1))
	assert.Equal(t, "", field(fields, 2))
	assert.Equal(t, "", field(fields, -1))
}

func TestDetectSentinel(t *testing.T) {
	tests := []struct {
		name     string
		block    string
		message  string
		expected bool
	}{
		{
			name:     "Train not found",
			block:    "~~~~~Train not found",
			message:  "Train not found",
			expected: true,
		},
		{
			name:     "Try again with trailing period",
			block:    "~~~~~Please try again after some time.",
			message:  "Please try again after some time.",
			expected: true,
		},
		{
			name:     "No direct trains",
			block:    "~~~~~No direct trains found between NDLS and HWH~",
			message:  "No direct trains found between NDLS and HWH",
			expected: true,
		},
		{
			name:     "From station",
			block:    "~From station not found~",
			message:  "From station not found",
			expected: true,
		},
		{
			name:     "Casing must match",
			block:    "~~~~~train not found",
			expected: false,
		},
		{
			name:     "Data block",
			block:    "~^12951~Mumbai Rajdhani~",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, found := DetectSentinel(tt.block)
			assert.Equal(t, tt.expected, found)
			assert.Equal(t, tt.message, msg)
		})
	}
}
