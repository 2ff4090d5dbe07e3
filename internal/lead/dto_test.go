package lead

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagecrm/api/internal/apperr"
)

func TestCreateLeadRequestValidate(t *testing.T) {
	valid := func() *CreateLeadRequest {
		return &CreateLeadRequest{Name: "Acme Industrial"}
	}

	t.Run("minimal valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("name trimmed", func(t *testing.T) {
		r := &CreateLeadRequest{Name: "  Acme Industrial  "}
		require.NoError(t, r.Validate())
		assert.Equal(t, "Acme Industrial", r.Name)
	})

	t.Run("name too short", func(t *testing.T) {
		r := &CreateLeadRequest{Name: " a "}
		err := r.Validate()
		var vErr *apperr.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "name", vErr.Field)
	})

	t.Run("name too long", func(t *testing.T) {
		r := &CreateLeadRequest{Name: strings.Repeat("x", 101)}
		assert.Error(t, r.Validate())
	})

	t.Run("unknown source", func(t *testing.T) {
		r := valid()
		src := Source("CARRIER_PIGEON")
		r.Source = &src
		assert.Error(t, r.Validate())
	})

	t.Run("converted status rejected", func(t *testing.T) {
		r := valid()
		st := StatusConverted
		r.Status = &st
		err := r.Validate()
		var vErr *apperr.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "status", vErr.Field)
	})

	t.Run("score out of range", func(t *testing.T) {
		r := valid()
		score := 101
		r.Score = &score
		assert.Error(t, r.Validate())

		score = -1
		assert.Error(t, r.Validate())
	})

	t.Run("negative estimated value", func(t *testing.T) {
		r := valid()
		v := -10.0
		r.EstimatedValue = &v
		assert.Error(t, r.Validate())
	})
}

func TestUpdateLeadRequestValidate(t *testing.T) {
	t.Run("empty patch valid", func(t *testing.T) {
		assert.NoError(t, (&UpdateLeadRequest{}).Validate())
	})

	t.Run("converted status rejected", func(t *testing.T) {
		st := StatusConverted
		r := &UpdateLeadRequest{Status: &st}
		assert.Error(t, r.Validate())
	})

	t.Run("unknown stage", func(t *testing.T) {
		stage := PipelineStage("WON")
		r := &UpdateLeadRequest{PipelineStage: &stage}
		assert.Error(t, r.Validate())
	})
}

func TestConvertLeadRequestValidate(t *testing.T) {
	assert.NoError(t, (&ConvertLeadRequest{EstimatedValue: 0}).Validate())
	assert.NoError(t, (&ConvertLeadRequest{EstimatedValue: 5000}).Validate())
	assert.Error(t, (&ConvertLeadRequest{EstimatedValue: -1}).Validate())
}
