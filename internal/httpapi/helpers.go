package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"todo-api/internal/todo"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type validationResponse struct {
	Error  string            `json:"error"`
	Fields []todo.FieldError `json:"fields"`
}

type notFoundResponse struct {
	Error string `json:"error"`
	ID    int64  `json:"id"`
}

// writeFailure renders a non-nil error from decoding or from the service.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var re *requestError
	if errors.As(err, &re) {
		writeError(w, http.StatusBadRequest, re.msg)
		return
	}

	switch todo.KindOf(err) {
	case todo.KindValidation:
		var ve *todo.ValidationError
		errors.As(err, &ve)
		writeJSON(w, http.StatusBadRequest, validationResponse{Error: "validation failed", Fields: ve.Fields})
	case todo.KindNotFound:
		var nf *todo.NotFoundError
		if errors.As(err, &nf) {
			writeJSON(w, http.StatusNotFound, notFoundResponse{Error: nf.Error(), ID: nf.ID})
			return
		}
		writeError(w, http.StatusNotFound, "not found")
	case todo.KindStorage:
		s.logger.Error("storage_failure", map[string]any{
			"rid":    RequestIDFromContext(r.Context()),
			"method": r.Method,
			"path":   r.URL.Path,
			"err":    err,
		})
		writeError(w, http.StatusInternalServerError, "internal error")
	case todo.KindOK:
		// writeFailure is never called with a nil error.
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &todo.ValidationError{Fields: []todo.FieldError{
			{Field: "id", Message: "id must be an integer"},
		}}
	}
	return id, nil
}
