package server

import (
	"fmt"
	"net/http"
	"testing"

	accountdomain "github.com/smallbiznis/ledgerview/internal/account/domain"
	authdomain "github.com/smallbiznis/ledgerview/internal/auth/domain"
	invoicedomain "github.com/smallbiznis/ledgerview/internal/invoice/domain"
	supportdomain "github.com/smallbiznis/ledgerview/internal/support/domain"
	uploaddomain "github.com/smallbiznis/ledgerview/internal/upload/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantType   string
	}{
		{ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{authdomain.ErrSessionExpired, http.StatusUnauthorized, "unauthorized"},
		{ErrForbidden, http.StatusForbidden, "forbidden"},
		{ErrTooManyRequests, http.StatusTooManyRequests, "too_many_requests"},
		{supportdomain.ErrTicketClosed, http.StatusConflict, "conflict"},
		{invoicedomain.ErrInvalidTransition, http.StatusConflict, "conflict"},
		{uploaddomain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "file_too_large"},
		{accountdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{accountdomain.ErrInvalidType, http.StatusBadRequest, "validation_error"},
		{fmt.Errorf("ingest: %w", invoicedomain.ErrInvalidLines), http.StatusBadRequest, "validation_error"},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		status, payload := mapError(tc.err)
		assert.Equal(t, tc.wantStatus, status, "error %v", tc.err)
		assert.Equal(t, tc.wantType, payload.Type, "error %v", tc.err)
	}
}

func TestValidationErrorsPayloadCarriesFields(t *testing.T) {
	err := newValidationError("threshold", "invalid_threshold", "invalid value")

	status, payload := mapError(err)

	assert.Equal(t, http.StatusBadRequest, status)
	if assert.Len(t, payload.Errors, 1) {
		assert.Equal(t, "threshold", payload.Errors[0].Field)
		assert.Equal(t, "invalid_threshold", payload.Errors[0].Code)
	}
}
