package realtime

import (
	"testing"

	"github.com/bt-bridge/openai-realtime-cli/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClientSecret(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{
			name: "full response",
			body: `{"value":"ek_abc123","expires_at":1735689600,"session":{"type":"realtime"}}`,
			want: "ek_abc123",
		},
		{
			name: "value only",
			body: `{"value":"ek_xyz"}`,
			want: "ek_xyz",
		},
		{
			name:    "missing value",
			body:    `{"expires_at":1735689600}`,
			wantErr: true,
		},
		{
			name:    "not json",
			body:    `oops`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret, err := parseClientSecret([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, secret.Value)
		})
	}
}

func TestCreateClientSecretValidation(t *testing.T) {
	_, err := CreateClientSecret(t.Context(), nil, "sk", "", 0)
	assert.ErrorIs(t, err, shared.ErrNoLogger)

	_, err = CreateClientSecret(t.Context(), shared.NewNopLogger(), "", "", 0)
	assert.ErrorIs(t, err, shared.ErrNoAPIKey)
}
