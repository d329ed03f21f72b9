package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixTooLong(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		tooLong bool
	}{
		{"single char", "!", false},
		{"exactly five", "!!!!!", false},
		{"six chars", "!!!!!!", true},
		{"multi-byte counted as characters", "«»", false},
		{"five multi-byte chars", "«««««", false},
		{"six multi-byte chars", "««««««", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.tooLong, prefixTooLong(tt.prefix))
		})
	}
}
