package http

import (
	"context"
	"net/http"

	"rental-backoffice/internal/security"
	"rental-backoffice/internal/service"

	"github.com/gorilla/mux"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the application services exposed over HTTP.
type Services struct {
	Cashier  service.CashierService
	Rental   service.RentalService
	Payment  service.PaymentService
	Dispatch service.DispatchService
	Item     service.ItemService
	Client   service.ClientService
	Report   service.ReportService
}

type Handler struct {
	svc   Services
	store Pinger
}

func NewHandler(svc Services, store Pinger) *Handler {
	return &Handler{svc: svc, store: store}
}

// NewRouter registers every route by name. Route names are the keys of
// config.EndpointSecurityConfig.
func NewRouter(h *Handler, tm security.TokenManager) *mux.Router {
	root := mux.NewRouter()
	root.Use(requestID, accessLog)

	auth := NewAuthMiddleware(tm)
	root.Use(auth.Handler)

	root.HandleFunc("/health", h.Health).Methods(http.MethodGet).Name("health")

	api := root.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/cashier/open", h.OpenRegister).Methods(http.MethodPost).Name("cashier.open")
	api.HandleFunc("/cashier/current", h.CurrentRegister).Methods(http.MethodGet).Name("cashier.current")
	api.HandleFunc("/cashier/registers", h.ListRegisters).Methods(http.MethodGet).Name("cashier.list")
	api.HandleFunc("/cashier/registers/{id:[0-9]+}", h.GetRegister).Methods(http.MethodGet).Name("cashier.get")
	api.HandleFunc("/cashier/registers/{id:[0-9]+}/summary", h.RegisterSummary).Methods(http.MethodGet).Name("cashier.summary")
	api.HandleFunc("/cashier/registers/{id:[0-9]+}/close", h.CloseRegister).Methods(http.MethodPost).Name("cashier.close")
	api.HandleFunc("/cashier/transactions", h.CreateTransaction).Methods(http.MethodPost).Name("cashier.transaction.create")
	api.HandleFunc("/cashier/transactions", h.ListTransactions).Methods(http.MethodGet).Name("cashier.transaction.list")
	api.HandleFunc("/cashier/transactions/{id:[0-9]+}", h.GetTransaction).Methods(http.MethodGet).Name("cashier.transaction.get")
	api.HandleFunc("/cashier/transactions/{id:[0-9]+}/cancel", h.CancelTransaction).Methods(http.MethodPost).Name("cashier.transaction.cancel")
	api.HandleFunc("/cashier/reports/daily", h.DailyReport).Methods(http.MethodGet).Name("cashier.report.daily")
	api.HandleFunc("/cashier/reports/period", h.PeriodReport).Methods(http.MethodGet).Name("cashier.report.period")

	api.HandleFunc("/rentals", h.CreateRental).Methods(http.MethodPost).Name("rental.create")
	api.HandleFunc("/rentals", h.ListRentals).Methods(http.MethodGet).Name("rental.list")
	api.HandleFunc("/rentals/check-overdue", h.CheckOverdue).Methods(http.MethodPost).Name("rental.check_overdue")
	api.HandleFunc("/rentals/{id:[0-9]+}", h.GetRental).Methods(http.MethodGet).Name("rental.get")
	api.HandleFunc("/rentals/{id:[0-9]+}/complete", h.CompleteRental).Methods(http.MethodPost).Name("rental.complete")
	api.HandleFunc("/rentals/{id:[0-9]+}/cancel", h.CancelRental).Methods(http.MethodPost).Name("rental.cancel")
	api.HandleFunc("/rentals/{id:[0-9]+}/send-to-cashier", h.SendToCashier).Methods(http.MethodPost).Name("rental.send_to_cashier")
	api.HandleFunc("/rentals/{id:[0-9]+}/balance", h.RentalBalance).Methods(http.MethodGet).Name("payment.balance")

	api.HandleFunc("/payments", h.CreatePayment).Methods(http.MethodPost).Name("payment.create")
	api.HandleFunc("/payments", h.ListPayments).Methods(http.MethodGet).Name("payment.list")
	api.HandleFunc("/payments/{id:[0-9]+}", h.GetPayment).Methods(http.MethodGet).Name("payment.get")

	api.HandleFunc("/items", h.CreateItem).Methods(http.MethodPost).Name("item.create")
	api.HandleFunc("/items", h.ListItems).Methods(http.MethodGet).Name("item.list")
	api.HandleFunc("/items/categories", h.ListCategories).Methods(http.MethodGet).Name("item.categories")
	api.HandleFunc("/items/{id:[0-9]+}", h.GetItem).Methods(http.MethodGet).Name("item.get")
	api.HandleFunc("/items/{id:[0-9]+}", h.UpdateItem).Methods(http.MethodPut).Name("item.update")
	api.HandleFunc("/items/{id:[0-9]+}", h.DeleteItem).Methods(http.MethodDelete).Name("item.delete")
	api.HandleFunc("/items/{id:[0-9]+}/maintenance", h.SetMaintenance).Methods(http.MethodPost).Name("item.maintenance")
	api.HandleFunc("/items/{id:[0-9]+}/pricing", h.ListPricing).Methods(http.MethodGet).Name("item.pricing.get")
	api.HandleFunc("/items/{id:[0-9]+}/pricing", h.ReplacePricing).Methods(http.MethodPut).Name("item.pricing.update")

	api.HandleFunc("/clients", h.CreateClient).Methods(http.MethodPost).Name("client.create")
	api.HandleFunc("/clients", h.ListClients).Methods(http.MethodGet).Name("client.list")
	api.HandleFunc("/clients/{id:[0-9]+}", h.GetClient).Methods(http.MethodGet).Name("client.get")
	api.HandleFunc("/clients/{id:[0-9]+}", h.UpdateClient).Methods(http.MethodPut).Name("client.update")
	api.HandleFunc("/clients/{id:[0-9]+}", h.DeleteClient).Methods(http.MethodDelete).Name("client.delete")

	api.HandleFunc("/dashboard", h.Dashboard).Methods(http.MethodGet).Name("dashboard")
	api.HandleFunc("/audit", h.AuditTrail).Methods(http.MethodGet).Name("audit.list")

	return root
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

