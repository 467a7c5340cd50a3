package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/productlabel/productlabel-server/internal/errors"
	"github.com/productlabel/productlabel-server/internal/validation"
)

type testRequest struct {
	Name      string   `json:"name" validate:"required,max=10"`
	OptionID  int64    `json:"option_id" validate:"required,gt=0"`
	Position  string   `json:"position,omitempty" validate:"omitempty,css_class"`
	DisplayOn []string `json:"display_on" validate:"dive,oneof=listing product"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{
		Name:      "Sale",
		OptionID:  5,
		Position:  "top-left",
		DisplayOn: []string{"listing", "product"},
	})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       testRequest
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing required field",
			req:       testRequest{OptionID: 5},
			wantField: "name",
			wantMsg:   "is required",
		},
		{
			name:      "name too long",
			req:       testRequest{Name: "a very long label name", OptionID: 5},
			wantField: "name",
			wantMsg:   "must not exceed 10 characters",
		},
		{
			name:      "position with spaces",
			req:       testRequest{Name: "Sale", OptionID: 5, Position: "top left"},
			wantField: "position",
			wantMsg:   "must be a single CSS class name",
		},
		{
			name:      "unknown display context",
			req:       testRequest{Name: "Sale", OptionID: 5, DisplayOn: []string{"cart"}},
			wantField: "display_on[0]",
			wantMsg:   "must be one of: listing product",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{Name: "Sale"})
	require.Error(t, err)

	// Should use JSON tag name "option_id", not struct field name "OptionID"
	assert.Contains(t, err.Error(), "option_id")
	assert.NotContains(t, err.Error(), "OptionID")
}
