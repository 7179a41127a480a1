package validation_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmarkapp/shelfmark-server/internal/store"
	"github.com/shelfmarkapp/shelfmark-server/internal/validation"
)

type testRequest struct {
	Title  string  `json:"title" validate:"required,max=500"`
	Status string  `json:"status" validate:"omitempty,oneof=wishlist library reading"`
	Rating float64 `json:"rating" validate:"gte=0,lte=5"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{Title: "Dune", Status: "library", Rating: 4.5})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name       string
		req        testRequest
		wantErrMsg string
	}{
		{
			name:       "missing required field",
			req:        testRequest{Rating: 3},
			wantErrMsg: "title is required",
		},
		{
			name:       "unknown status",
			req:        testRequest{Title: "Dune", Status: "bogus"},
			wantErrMsg: "status must be one of",
		},
		{
			name:       "rating out of range",
			req:        testRequest{Title: "Dune", Rating: 7},
			wantErrMsg: "rating must be less than or equal to 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var storeErr *store.Error
			require.True(t, errors.As(err, &storeErr))
			assert.Equal(t, http.StatusBadRequest, storeErr.HTTPCode())
			assert.Contains(t, storeErr.Message, tt.wantErrMsg)
			assert.ErrorIs(t, err, store.ErrInvalidInput)
		})
	}
}

func TestValidator_UsesJSONTagNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title", "error names the json field, not the Go field")
}
