package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/rupayana/backend/internal/accounts"
	"github.com/rupayana/backend/internal/http/respond"
	"github.com/rupayana/backend/internal/ledger"
	"github.com/rupayana/backend/internal/reset"
	"github.com/rupayana/backend/internal/storage"
)

// writeDomainError maps domain sentinels onto HTTP statuses. Anything not
// in the taxonomy is an infra failure: logged with context, surfaced as an
// opaque 500 so internals never leak to the caller.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, accounts.ErrValidation), errors.Is(err, ledger.ErrInvalidAmount):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, accounts.ErrInvalidCredentials):
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "account not found")
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Error(w, http.StatusConflict, "email already registered")
	case errors.Is(err, storage.ErrInsufficientFunds):
		respond.Error(w, http.StatusConflict, "insufficient funds")
	case errors.Is(err, ledger.ErrSameAccount):
		respond.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, reset.ErrInvalidToken):
		respond.Error(w, http.StatusBadRequest, "invalid reset token")
	case errors.Is(err, reset.ErrTokenExpired):
		respond.Error(w, http.StatusGone, "reset token expired")
	default:
		log.Printf("%s: %v", op, err)
		respond.Error(w, http.StatusInternalServerError, "server error")
	}
}
