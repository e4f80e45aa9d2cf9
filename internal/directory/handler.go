package directory

import (
	"net/http"

	httputil "roomdesk/pkg/http"
	"roomdesk/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := httputil.ExtractLimit(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	suggestions, err := h.service.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteList(w, suggestions, int64(len(suggestions)))
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/contacts", h.Search)
}
