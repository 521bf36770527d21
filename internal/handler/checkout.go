package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"foodorder/internal/mw"
	"foodorder/internal/service"
)

const (
	maxWebhookBody  = 64 << 10
	signatureHeader = "Stripe-Signature"
)

type checkoutResponse struct {
	URL string `json:"url"`
}

func CreateCheckoutSessionHandler(checkoutSvc *service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req service.CheckoutRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		url, err := checkoutSvc.CreateSession(r.Context(), userID, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, checkoutResponse{URL: url})
	}
}

// WebhookHandler passes the untouched request body to the reconciler; the
// signature covers the exact bytes, so nothing may parse it first.
func WebhookHandler(reconciler *service.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeMessage(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			writeMessage(w, http.StatusBadRequest, "failed to read body")
			return
		}

		outcome, err := reconciler.Handle(r.Context(), body, r.Header.Get(signatureHeader))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidSignature):
				slog.Warn("webhook rejected", "remote_addr", r.RemoteAddr, "error", err)
			case errors.Is(err, service.ErrOrderNotFound):
				slog.Warn("webhook for unknown order", "error", err)
			}
			writeError(w, r, err)
			return
		}

		slog.Info("webhook processed", "outcome", outcome.String())
		w.WriteHeader(http.StatusOK)
	}
}
