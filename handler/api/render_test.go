package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/constructoken/openpay/core"
)

func TestErrStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "bad request",
			err:  errBadRequest("nope"),
			want: http.StatusBadRequest,
		},
		{
			name: "transaction not found",
			err:  core.ErrTransactionNotFound,
			want: http.StatusNotFound,
		},
		{
			name: "sql not found",
			err:  sql.ErrNoRows,
			want: http.StatusNotFound,
		},
		{
			name: "hash rejected",
			err:  &core.HashVerificationError{ID: "tx-1"},
			want: http.StatusForbidden,
		},
		{
			name: "recurring done",
			err:  &core.RecurringDoneError{ID: "rg-1", State: core.RecurringStateExhausted},
			want: http.StatusConflict,
		},
		{
			name: "lost write race",
			err:  core.ErrOptimisticLock,
			want: http.StatusConflict,
		},
		{
			name: "upstream grant failure",
			err:  &core.GrantRequestError{AuthServer: "https://auth.example.com", Status: 500, Err: errors.New("boom")},
			want: http.StatusBadGateway,
		},
		{
			name: "quote mismatch",
			err:  &core.QuoteError{Reason: "receive amount mismatch"},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "anything else",
			err:  fmt.Errorf("wat"),
			want: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errStatus(tt.err); got != tt.want {
				t.Errorf("errStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
