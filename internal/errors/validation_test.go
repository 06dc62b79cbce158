package errors

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "without rule",
			err:  NewValidationError("Title", "is required", nil),
			want: "validation error on field 'Title': is required",
		},
		{
			name: "with rule",
			err:  NewValidationErrorWithRule("Status", "must be one of: active inactive", "oneof", "paused"),
			want: "validation error on field 'Status': must be one of: active inactive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("DeviceID", "is required", "required", "")

	assert.Equal(t, "DeviceID", err.Field)
	assert.Equal(t, "is required", err.Message)
	assert.Equal(t, "required", err.Rule)
	assert.Equal(t, "", err.Value)
}

func TestValidationErrors_Error(t *testing.T) {
	tests := []struct {
		name string
		errs ValidationErrors
		want string
	}{
		{
			name: "empty",
			errs: nil,
			want: "validation failed",
		},
		{
			name: "single error names the field",
			errs: ValidationErrors{
				{Field: "Title", Message: "is required"},
			},
			want: "validation failed: Title is required",
		},
		{
			name: "multiple errors report a count",
			errs: ValidationErrors{
				{Field: "Title", Message: "is required"},
				{Field: "ProjectID", Message: "is required"},
			},
			want: "validation failed: 2 field errors",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.errs.Error())
		})
	}
}

func TestToValidationErrors(t *testing.T) {
	type batchUpload struct {
		DeviceID string `validate:"required"`
		Items    int    `validate:"min=1,max=500"`
	}

	v := validator.New()
	err := v.Struct(batchUpload{Items: 501})
	require.Error(t, err)

	converted := ToValidationErrors(err)
	require.Len(t, converted, 2)

	assert.Equal(t, "DeviceID", converted[0].Field)
	assert.Equal(t, "is required", converted[0].Message)
	assert.Equal(t, "required", converted[0].Rule)

	assert.Equal(t, "Items", converted[1].Field)
	assert.Equal(t, "must be at most 500", converted[1].Message)
	assert.Equal(t, 501, converted[1].Value)

	// Anything other than field errors converts to an empty set
	assert.Empty(t, ToValidationErrors(fmt.Errorf("connection refused")))
}
