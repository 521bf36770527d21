package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"foodorder/internal/model"
	"foodorder/internal/mw"
	"foodorder/internal/service"
)

type statusRequest struct {
	Status model.OrderStatus `json:"status"`
}

func ListMyOrdersHandler(orders *service.OrderQueries) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		list, err := orders.ForUser(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetOrderHandler(orders *service.OrderQueries) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		order, err := orders.ByID(r.Context(), userID, chi.URLParam(r, "orderId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}

func ListRestaurantOrdersHandler(orders *service.OrderQueries) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		list, err := orders.ForOwner(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func UpdateOrderStatusHandler(ledger *service.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req statusRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		order, err := ledger.AdvanceStatus(r.Context(), chi.URLParam(r, "orderId"), req.Status, userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}
