package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/tripping-alien/shortlink-sub000/internal/domain"
	"github.com/tripping-alien/shortlink-sub000/internal/service"
)

// deletionSecretHeader carries the caller's deletion secret on DELETE
const deletionSecretHeader = "X-Deletion-Secret"

// Handler holds the HTTP handlers for the link API
type Handler struct {
	links service.LinkService
}

// NewHandler creates a new HTTP handler
func NewHandler(links service.LinkService) *Handler {
	return &Handler{links: links}
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps service errors onto HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrExpired):
		return http.StatusGone
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logrus.WithError(err).Error("request failed")
		writeJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// CreateLink handles POST /api/links
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	resp, err := h.links.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetLink handles GET /api/links/{code}
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	link, err := h.links.Info(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, link)
}

// DeleteLink handles DELETE /api/links/{code}
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	secret := r.Header.Get(deletionSecretHeader)
	if secret == "" {
		var req domain.DeleteLinkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			secret = req.Secret
		}
	}
	if secret == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: deletionSecretHeader + " header is required"})
		return
	}

	if err := h.links.Delete(r.Context(), code, secret); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListLinks handles GET /api/links
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.links.List(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		writeError(w, err)
		return
	}
	if links == nil {
		links = []*domain.Link{}
	}

	writeJSON(w, http.StatusOK, links)
}

// Redirect handles GET /{code}
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	target, err := h.links.Resolve(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// Healthz handles GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
