package services

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/cppla/wellbeing/analytics"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   int
		ok     bool
	}{
		{err: ErrDayConflict, status: http.StatusConflict, code: 40930, ok: true},
		{err: fmt.Errorf("summary: %w", analytics.ErrInvalidRange), status: http.StatusBadRequest, code: 40021, ok: true},
		{err: ErrCheckInNotFound, status: http.StatusNotFound, code: 40420, ok: true},
		{err: ErrInvalidCredentials, status: http.StatusUnauthorized, code: 40106, ok: true},
		{err: errors.New("disk on fire"), status: http.StatusInternalServerError, code: 50000, ok: false},
	}
	for _, tc := range tests {
		got, ok := ErrorStatus(tc.err)
		if got.HTTP != tc.status || got.Code != tc.code || ok != tc.ok {
			t.Errorf("%v: got %+v ok=%v, want %d/%d ok=%v", tc.err, got, ok, tc.status, tc.code, tc.ok)
		}
	}
}
