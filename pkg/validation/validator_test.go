package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReportsJSONFieldNames(t *testing.T) {
	type payload struct {
		StudentID   string `json:"studentId" validate:"required,uuid"`
		FormationID string `json:"formationId,omitempty" validate:"required"`
		Note        string `validate:"required"`
	}
	err := New().Struct(payload{StudentID: "nope"})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	assert.ElementsMatch(t, []string{"studentId", "formationId", "Note"}, fields)
}
