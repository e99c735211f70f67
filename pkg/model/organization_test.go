package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrganizationDatabaseCreated(t *testing.T) {
	tests := []struct {
		name     string
		settings string
		expected bool
	}{
		{
			name:     "no settings",
			settings: "",
			expected: false,
		},
		{
			name:     "empty object",
			settings: `{}`,
			expected: false,
		},
		{
			name:     "database recorded",
			settings: `{"database_created":true,"database_name":"zphere_tenant_org-1"}`,
			expected: true,
		},
		{
			name:     "malformed settings",
			settings: `not-json`,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			org := Organization{Settings: json.RawMessage(tt.settings)}
			assert.Equal(t, tt.expected, org.DatabaseCreated())
		})
	}
}
