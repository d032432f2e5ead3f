package http

import (
	"encoding/json"
	"net/http"

	"github.com/mind-engage/mindengage-progression/internal/progress"
	"github.com/mind-engage/mindengage-progression/internal/validate"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps a progress error kind onto an HTTP status.
func statusFor(k progress.Kind) int {
	switch k {
	case progress.KindUnauthenticated:
		return http.StatusUnauthorized
	case progress.KindInvalidData:
		return http.StatusBadRequest
	case progress.KindInvalidOption:
		return http.StatusUnprocessableEntity
	case progress.KindNotEligible:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a service error. Causes of server errors are never
// sent to the client.
func writeError(w http.ResponseWriter, err error) {
	k := progress.KindOf(err)
	msg := progress.ErrServer.Msg
	if k != progress.KindServerError {
		msg = err.Error()
	}
	writeJSON(w, statusFor(k), errorBody{Error: msg})
}

// decode reads a JSON body into dst and validates it. On failure it writes a
// 400 and returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad json"})
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: progress.ErrInvalidData.Msg, Fields: validate.Fields(err)})
		return false
	}
	return true
}
