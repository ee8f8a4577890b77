package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"conforming", `{"reply":"ok"}`, false},
		{"missing required", `{}`, true},
		{"wrong type", `{"reply":7}`, true},
		{"extra property", `{"reply":"ok","score":1}`, true},
		{"not json", `reply: ok`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(replySchema, json.RawMessage(tt.raw))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var invalid *ErrInvalidResponse
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestValidateResponseWithoutSchema(t *testing.T) {
	assert.NoError(t, validateResponse(nil, json.RawMessage("plain text")))
}
