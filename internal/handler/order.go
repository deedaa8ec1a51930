package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ordersync/internal/reconcile"
)

func ListOrdersHandler(orderSvc OrderReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		limit, ok := limitParam(r, 50, 500)
		if !ok {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}

		orders, err := orderSvc.ListOrders(r.Context(), limit)
		if err != nil {
			slog.Error("list orders failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if len(orders) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, orders)
	}
}

func GetOrderHandler(orderSvc OrderReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderID")

		order, err := orderSvc.GetOrderDetails(r.Context(), orderID)
		if err != nil {
			switch {
			case errors.Is(err, reconcile.ErrNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			default:
				slog.Error("get order failed", "order_id", orderID, "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}
