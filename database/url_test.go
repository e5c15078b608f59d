package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructDatabaseURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		dbName   string
		expected string
	}{
		{"no database name", "postgres://u:p@localhost:5432", "", "postgres://u:p@localhost:5432"},
		{"plain base", "postgres://u:p@localhost:5432", "celestia", "postgres://u:p@localhost:5432/celestia?sslmode=disable"},
		{"trailing slash", "postgres://u:p@localhost:5432/", "celestia", "postgres://u:p@localhost:5432/celestia?sslmode=disable"},
		{"existing query", "postgres://u:p@localhost:5432?connect_timeout=5", "celestia", "postgres://u:p@localhost:5432/celestia?connect_timeout=5&sslmode=disable"},
		{"sslmode kept", "postgres://u:p@db:5432?sslmode=require", "celestia", "postgres://u:p@db:5432/celestia?sslmode=require"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConstructDatabaseURL(tt.baseURL, tt.dbName))
		})
	}
}
