package handlers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDueDate(t *testing.T) {
	str := func(s string) *string { return &s }

	got, err := parseDueDate(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseDueDate(str("  "))
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseDueDate(str("2025-03-14"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), *got)

	got, err = parseDueDate(str("2025-03-14T10:30:00Z"))
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())

	_, err = parseDueDate(str("next friday"))
	assert.Error(t, err)
}

func TestOriginChecker(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"listed origin", []string{"http://localhost:3000"}, "http://localhost:3000", true},
		{"unlisted origin", []string{"http://localhost:3000"}, "http://evil.example", false},
		{"no origin header", []string{"http://localhost:3000"}, "", true},
		{"wildcard", []string{"*"}, "http://anything.example", true},
		{"empty list", nil, "http://anything.example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, originChecker(tt.allowed)(req))
		})
	}
}
