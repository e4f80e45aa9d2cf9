package handler

import (
	"net/http"

	"roomdesk/internal/bookings/events"
	"roomdesk/internal/bookings/service"
	"roomdesk/internal/scheduling/grid"
	httputil "roomdesk/pkg/http"
	"roomdesk/pkg/logger"
	"roomdesk/pkg/middleware"
	"roomdesk/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type OpenSessionRequest struct {
	Date   string `json:"date"`
	Branch string `json:"branch,omitempty"`
	Room   string `json:"room,omitempty"`
}

type ClickRequest struct {
	Slot grid.TimeOfDay `json:"slot"`
}

type ResourceRequest struct {
	Branch string `json:"branch"`
	Room   string `json:"room"`
}

type InviteTextRequest struct {
	Text string `json:"text"`
}

type InviteeRequest struct {
	Invitee string `json:"invitee"`
}

// resourceOrNil maps an empty branch/room pair onto "no active room".
func resourceOrNil(branch, room string) *model.Resource {
	res := model.Resource{Branch: branch, Room: room}
	if res.IsZero() {
		return nil
	}
	return &res
}

type SessionHandler struct {
	service service.SessionService
	log     *logger.Logger
}

func NewSessionHandler(service service.SessionService, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		log:     log,
	}
}

func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req OpenSessionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, err := h.service.Open(r.Context(), req.Date, resourceOrNil(req.Branch, req.Room))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, session)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, err := h.service.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, session)
}

func (h *SessionHandler) Click(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req ClickRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Click(r.Context(), ps.ByName("id"), req.Slot)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, result)
}

func (h *SessionHandler) SetResource(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req ResourceRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, err := h.service.SetResource(r.Context(), ps.ByName("id"), resourceOrNil(req.Branch, req.Room))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, session)
}

func (h *SessionHandler) SetInviteText(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req InviteTextRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, err := h.service.SetInviteText(r.Context(), ps.ByName("id"), req.Text)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, session)
}

func (h *SessionHandler) AddInvitee(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req InviteeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, err := h.service.AddInvitee(r.Context(), ps.ByName("id"), req.Invitee)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, session)
}

func (h *SessionHandler) Commit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var form model.BookingForm
	if err := httputil.DecodeJSON(r, &form); err != nil {
		httputil.WriteError(w, err)
		return
	}

	ctx := events.WithCorrelationID(r.Context(), middleware.RequestID(r.Context()))
	booking, err := h.service.Commit(ctx, ps.ByName("id"), form)
	if err != nil {
		h.log.Info("booking commit rejected", "handler", "Commit", "session_id", ps.ByName("id"), "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, booking)
}

func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Close(r.Context(), ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SessionHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/sessions", h.Open)
	router.GET("/api/v1/sessions/:id", h.Get)
	router.POST("/api/v1/sessions/:id/clicks", h.Click)
	router.PUT("/api/v1/sessions/:id/resource", h.SetResource)
	router.PUT("/api/v1/sessions/:id/invite-text", h.SetInviteText)
	router.POST("/api/v1/sessions/:id/invitees", h.AddInvitee)
	router.POST("/api/v1/sessions/:id/commit", h.Commit)
	router.DELETE("/api/v1/sessions/:id", h.Close)
}
