package task

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/alintm4/taskdesk/internal/identity"
)

type Handler struct {
	service *Service
	logger  *log.Logger
}

func NewHandler(service *Service, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{service: service, logger: logger}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func writeValidation(w http.ResponseWriter, errs []FieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func ownerFromRequest(r *http.Request) (string, bool) {
	u, ok := identity.UserFromContext(r.Context())
	if !ok {
		return "", false
	}
	return u.ID, true
}

// writeFailure maps repository errors. Storage detail never reaches the
// client; NotFound hides whether the task exists under another owner.
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	h.logger.Printf("task storage failure: %v", err)
	writeErr(w, http.StatusInternalServerError, "internal error")
}

// /api/tasks  (collection)
func (h *Handler) TasksRoot(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		filter := ParseFilter(q.Get("status"), q.Get("priority"), q.Get("search"))
		page, err := h.service.List(r.Context(), ownerID, filter, ParsePage(q.Get("page")))
		if err != nil {
			h.writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, page)

	case http.MethodPost:
		var in Input
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}

		res, errs, err := h.service.Create(r.Context(), ownerID, in, Today(time.Now()))
		if err != nil {
			h.writeFailure(w, err)
			return
		}
		if len(errs) > 0 {
			writeValidation(w, errs)
			return
		}
		writeJSON(w, http.StatusCreated, res)

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// /api/tasks/{id}
func (h *Handler) TasksSub(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/tasks/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := h.service.Get(r.Context(), ownerID, id)
		if err != nil {
			h.writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)

	case http.MethodPatch:
		var p Patch
		if err := decodeJSON(r, &p); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}

		res, errs, err := h.service.Update(r.Context(), ownerID, id, p, Today(time.Now()))
		if err != nil {
			h.writeFailure(w, err)
			return
		}
		if len(errs) > 0 {
			writeValidation(w, errs)
			return
		}
		writeJSON(w, http.StatusOK, res)

	case http.MethodDelete:
		if err := h.service.Delete(r.Context(), ownerID, id); err != nil {
			h.writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// GET /api/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sum, err := h.service.Dashboard(r.Context(), ownerID)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
