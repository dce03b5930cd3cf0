package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"EnergyView/internal/domain/errs"

	"github.com/stretchr/testify/assert"
)

func TestFromDomainErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("select: %w", errs.ErrRange), http.StatusBadRequest, "ERR_RANGE"},
		{fmt.Errorf("view: %w", errs.ErrInvalidArgument), http.StatusBadRequest, "ERR_INVALID_ARGUMENT"},
		{fmt.Errorf("argmax: %w", errs.ErrEmptyInput), http.StatusUnprocessableEntity, "ERR_EMPTY_INPUT"},
		{fmt.Errorf("colour: %w", errs.ErrParse), http.StatusUnprocessableEntity, "ERR_PARSE"},
		{fmt.Errorf("load: %w", errs.ErrNotFound), http.StatusNotFound, "ERR_NOT_FOUND"},
		{errors.New("connection refused"), http.StatusInternalServerError, "ERR_INTERNAL"},
	}
	for _, tc := range cases {
		got := FromDomainError(tc.err)
		assert.Equal(t, tc.status, got.Status, tc.err.Error())
		assert.Equal(t, tc.code, got.Code, tc.err.Error())
		assert.ErrorIs(t, got, tc.err)
	}
}

func TestFromDomainErrorKeepsAppError(t *testing.T) {
	in := BadRequestErrorf("bad %s", "from")
	assert.Same(t, in, FromDomainError(fmt.Errorf("wrapped: %w", in)))
}
