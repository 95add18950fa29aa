package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Handler exposes the tracker service over HTTP.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the API under the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Post("/{id}/exercises", h.AddExercise)
		r.Get("/{id}/logs", h.GetLogs)
	})
}

// ListUsers returns every user as {_id, username}.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, err, "Error retrieving users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// CreateUser registers the posted username.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.svc.CreateUser(r.Context(), fields["username"])
	if err != nil {
		h.fail(w, r, err, "Error saving user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// AddExercise records an exercise for the user in the path.
func (h *Handler) AddExercise(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, err := h.svc.AddExercise(r.Context(), ExerciseInput{
		UserID:      chi.URLParam(r, "id"),
		Description: fields["description"],
		Duration:    fields["duration"],
		Date:        fields["date"],
	})
	if err != nil {
		h.fail(w, r, err, "There was an error saving the exercise")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetLogs returns the user's exercise log filtered by from, to and limit.
func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := h.svc.GetLogs(r.Context(), LogQuery{
		UserID: chi.URLParam(r, "id"),
		From:   q.Get("from"),
		To:     q.Get("to"),
		Limit:  q.Get("limit"),
	})
	if err != nil {
		h.fail(w, r, err, "Error retrieving exercise log")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// fail maps service errors onto the response contract. Unknown users are a
// soft error and keep the 200 status.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, generic string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, ErrUsernameTaken):
		writeError(w, http.StatusConflict, ErrUsernameTaken.Error())
	case errors.Is(err, ErrUserNotFound):
		writeError(w, http.StatusOK, ErrUserNotFound.Error())
	default:
		h.logger.Error(generic, "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, generic)
	}
}

// readFields collects request body fields from a form or a flat JSON object.
func readFields(r *http.Request) (map[string]string, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, err
		}
		fields := make(map[string]string, len(raw))
		for k, v := range raw {
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				fields[k] = s
				continue
			}
			var n json.Number
			if err := json.Unmarshal(v, &n); err == nil {
				fields[k] = n.String()
				continue
			}
			return nil, fmt.Errorf("field %q must be a string or number", k)
		}
		return fields, nil
	}

	if ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return nil, err
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		fields[k] = r.PostForm.Get(k)
	}
	return fields, nil
}
