package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaValidator_ValidatePlaceSearchResponse(t *testing.T) {
	sv, err := NewSchemaValidator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{
			name:    "valid payload",
			payload: `{"documents": [{"place_name": "스타벅스 강남점", "x": "127.0", "y": "37.5"}]}`,
			wantErr: false,
		},
		{
			name:    "empty documents allowed",
			payload: `{"documents": []}`,
			wantErr: false,
		},
		{
			name:    "missing documents",
			payload: `{"meta": {}}`,
			wantErr: true,
		},
		{
			name:    "document without place_name",
			payload: `{"documents": [{"address_name": "서울"}]}`,
			wantErr: true,
		},
		{
			name:    "not json",
			payload: `<html>oops</html>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sv.ValidatePlaceSearchResponse([]byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSchemaValidator_ValidateRankingResponse(t *testing.T) {
	sv, err := NewSchemaValidator()
	require.NoError(t, err)

	assert.NoError(t, sv.ValidateRankingResponse([]byte(`{"ranking": [2, 0, 1]}`)))
	assert.NoError(t, sv.ValidateRankingResponse([]byte(`{"ranking": []}`)))
	assert.Error(t, sv.ValidateRankingResponse([]byte(`{"ranking": [-1]}`)))
	assert.Error(t, sv.ValidateRankingResponse([]byte(`{"ranking": ["first"]}`)))
	assert.Error(t, sv.ValidateRankingResponse([]byte(`{}`)))
}
