package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"agendaapi/src/domain"
)

const msgNotFound = "Not found."

type detailDTO struct {
	Detail string `json:"detail"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeDetail(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, detailDTO{Detail: detail})
}

// writeError traduz os erros do domínio para respostas HTTP.
// Erros de configuração (rota ausente, request ausente) viram 500 e são logados.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr):
		s.writeJSON(w, http.StatusBadRequest, validationErr.ByField())
	case errors.Is(err, domain.ErrEntityNotFound):
		s.writeDetail(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, domain.ErrSpeakerListClosed), errors.Is(err, domain.ErrAlreadyOnSpeakerList):
		s.writeDetail(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("Request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()))
		s.writeDetail(w, http.StatusInternalServerError, domain.ErrUnavailableServer.Error())
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

// pathID lê um id numérico da rota. Um id inválido não casa com nenhum item.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
