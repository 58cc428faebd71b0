package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
)

type errorBody struct {
	Errors []*apperror.Error `json:"errors"`
}

// RespondJSON writes v as the JSON body with the given status.
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// RespondError maps a domain error to an HTTP status and writes every
// accumulated (code, message) item in the body. Kind precedence when a
// list mixes kinds: failure, then not-found, then conflict.
func RespondError(w http.ResponseWriter, err error) {
	list := apperror.AsList(err)
	RespondJSON(w, statusFor(list), errorBody{Errors: list.Items})
}

func statusFor(list *apperror.List) int {
	switch {
	case list.HasKind(apperror.KindFailure):
		return http.StatusInternalServerError
	case list.HasKind(apperror.KindNotFound):
		return http.StatusNotFound
	case list.HasKind(apperror.KindConflict):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}
