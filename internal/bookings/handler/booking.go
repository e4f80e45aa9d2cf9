package handler

import (
	"net/http"

	"roomdesk/internal/bookings/service"
	"roomdesk/internal/resources"
	httputil "roomdesk/pkg/http"
	"roomdesk/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	catalog *resources.Catalog
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, catalog *resources.Catalog, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		catalog: catalog,
		log:     log,
	}
}

func (h *BookingHandler) Grid(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date, err := httputil.ExtractDate(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	day, err := h.service.Grid(r.Context(), date)
	if err != nil {
		h.log.Warn("failed to build day grid", "handler", "Grid", "date", date, "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, day)
}

func (h *BookingHandler) Resources(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	httputil.WriteSuccess(w, h.catalog.List())
}

func (h *BookingHandler) ListByDate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date, err := httputil.ExtractDate(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	bookings, err := h.service.ListByDate(r.Context(), date)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteList(w, bookings, int64(len(bookings)))
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	booking, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/grid", h.Grid)
	router.GET("/api/v1/resources", h.Resources)
	router.GET("/api/v1/bookings", h.ListByDate)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
}
