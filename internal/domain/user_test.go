package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		expected string
	}{
		{
			name:     "first name wins",
			user:     User{FirstName: "Ann", Username: "ann"},
			expected: "Ann",
		},
		{
			name:     "username fallback",
			user:     User{Username: "ann"},
			expected: "@ann",
		},
		{
			name:     "no names",
			user:     User{ID: 1},
			expected: "friend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.user.DisplayName())
		})
	}
}
