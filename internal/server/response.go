package server

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/mwantia/screener/pkg/explorer"
	"github.com/mwantia/screener/pkg/query"
	"github.com/mwantia/screener/pkg/savedquery"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func NewErrorResponse(status int, err string) Response {
	return Response{
		Message: err,
		Status:  status,
	}
}

func NewResponse(status int, message string, data any) Response {
	return Response{
		Data:    data,
		Message: message,
		Status:  status,
	}
}

// NewErrorResponseFrom maps core errors onto HTTP statuses.
func NewErrorResponseFrom(err error) Response {
	switch {
	case errors.Is(err, explorer.ErrLoading):
		return NewErrorResponse(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, savedquery.ErrNotFound):
		return NewErrorResponse(http.StatusNotFound, err.Error())
	case query.IsValidation(err):
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	default:
		return NewErrorResponse(http.StatusInternalServerError, err.Error())
	}
}

func writeResponse(w http.ResponseWriter, res Response) {
	data, err := json.Marshal(res)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Status)
	w.Write(data)
}

func readRequest(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
