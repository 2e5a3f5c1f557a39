package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hoxtonmix/seo-api/internal/seo"
)

// meta accompanies every success payload.
type meta struct {
	Timestamp time.Time `json:"timestamp"`
	Count     *int      `json:"count,omitempty"`
}

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Meta    meta `json:"meta"`
}

type failureEnvelope struct {
	Success bool         `json:"success"`
	Error   failureError `json:"error"`
}

type failureError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (s *Server) writeSuccess(w http.ResponseWriter, status int, data any) {
	s.writeJSON(w, status, successEnvelope{
		Success: true,
		Data:    data,
		Meta:    meta{Timestamp: time.Now().UTC()},
	})
}

// writeList is writeSuccess with a count in the meta block.
func (s *Server) writeList(w http.ResponseWriter, data any, count int) {
	s.writeJSON(w, http.StatusOK, successEnvelope{
		Success: true,
		Data:    data,
		Meta:    meta{Timestamp: time.Now().UTC(), Count: &count},
	})
}

// writeFailure serializes a domain error onto the uniform failure envelope.
// Non-domain errors are logged and reported generically.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	if domainErr := seo.AsError(err); domainErr != nil {
		if domainErr.Kind == seo.KindDatabase {
			s.logger.Error("database failure", zap.Error(err))
		}
		s.writeJSON(w, domainErr.HTTPStatus(), failureEnvelope{
			Error: failureError{
				Code:    string(domainErr.Kind),
				Message: domainErr.Message,
				Details: domainErr.Details,
			},
		})
		return
	}

	s.logger.Error("unexpected failure", zap.Error(err))
	s.writeJSON(w, http.StatusInternalServerError, failureEnvelope{
		Error: failureError{
			Code:    "INTERNAL_ERROR",
			Message: "internal server error",
		},
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}
