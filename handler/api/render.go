package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/constructoken/openpay/core"
	"github.com/constructoken/openpay/store"
	"github.com/oxtoacart/bpool"
)

var bufferPool = bpool.NewSizedBufferPool(64, 8*1024)

func render(w http.ResponseWriter, status int, v any) {
	b := bufferPool.Get()
	defer bufferPool.Put(b)

	if err := json.NewEncoder(b).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = b.WriteTo(w)
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadRequest("invalid request body")
	}

	return nil
}

type apiError struct {
	status int
	msg    string
}

func (e *apiError) Error() string { return e.msg }

func errBadRequest(msg string) error {
	return &apiError{status: http.StatusBadRequest, msg: msg}
}

func renderErr(w http.ResponseWriter, err error) {
	render(w, errStatus(err), map[string]any{"error": err.Error()})
}

func errStatus(err error) int {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.status
	}

	if store.IsErrNotFound(err) ||
		errors.Is(err, core.ErrTransactionNotFound) ||
		errors.Is(err, core.ErrGrantNotFound) {
		return http.StatusNotFound
	}

	var hashErr *core.HashVerificationError
	if errors.As(err, &hashErr) {
		return http.StatusForbidden
	}

	var doneErr *core.RecurringDoneError
	if errors.As(err, &doneErr) {
		return http.StatusConflict
	}

	if errors.Is(err, core.ErrOptimisticLock) {
		return http.StatusConflict
	}

	var (
		resolveErr  *core.WalletResolutionError
		grantErr    *core.GrantRequestError
		continueErr *core.GrantContinuationError
		quoteErr    *core.QuoteError
		paymentErr  *core.PaymentCreationError
	)

	switch {
	case errors.As(err, &resolveErr), errors.As(err, &grantErr), errors.As(err, &continueErr):
		return http.StatusBadGateway
	case errors.As(err, &quoteErr), errors.As(err, &paymentErr):
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}
