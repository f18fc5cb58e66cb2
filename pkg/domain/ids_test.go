package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "herald/pkg/domain-errors"
)

func TestParseIDInvariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseOwnerID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseJobID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseOwnerID(uuid.Nil.String())
		require.Error(t, err)
		_, err = ParseJobID(uuid.Nil.String())
		require.Error(t, err)
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		u := uuid.New()
		ownerID, err := ParseOwnerID(u.String())
		require.NoError(t, err)
		assert.Equal(t, OwnerID(u), ownerID)

		jobID, err := ParseJobID(u.String())
		require.NoError(t, err)
		assert.Equal(t, JobID(u), jobID)
	})
}

// Parsing is a trust boundary: job and owner IDs arrive in URLs and token
// claims, so hostile input must come back as a validation error, never a
// panic or a zero-value success.
func TestParseIDHostileInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE delivery_jobs;--", true},
		{"path traversal", "../../../etc/passwd", true},
		{"null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"oversized input", strings.Repeat("a", 1000), true},
		{"zero-width space", "550e8400\u200B-e29b-41d4-a716-446655440000", true},
		{"whitespace only", "   ", true},
		{"uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"lowercase valid UUID", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ownerErr := ParseOwnerID(tt.input)
			_, jobErr := ParseJobID(tt.input)
			if tt.wantErr {
				require.Error(t, ownerErr)
				require.Error(t, jobErr)
				assert.True(t, dErrors.HasCode(ownerErr, dErrors.CodeValidation))
			} else {
				require.NoError(t, ownerErr)
				require.NoError(t, jobErr)
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	assert.True(t, OwnerID{}.IsZero())
	assert.True(t, JobID{}.IsZero())
	assert.False(t, NewOwnerID().IsZero())
	assert.False(t, NewJobID().IsZero())
}

func TestIDJSONRoundTrip(t *testing.T) {
	jobID := NewJobID()

	data, err := json.Marshal(jobID)
	require.NoError(t, err)
	assert.Equal(t, `"`+jobID.String()+`"`, string(data))

	var decoded JobID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, jobID, decoded)
}
