package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"go.uber.org/zap"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func InternalServerError(w http.ResponseWriter, logger *zap.Logger, msg string, err error) {
	logger.Error(msg, zap.Error(err))
	JSON(w, http.StatusInternalServerError, errorBody{Code: "INTERNAL", Message: "Internal Server Error"})
}

func BadRequest(w http.ResponseWriter, logger *zap.Logger, msg string, err error) {
	if err != nil {
		logger.Warn("bad request", zap.String("message", msg), zap.Error(err))
	} else {
		logger.Warn("bad request", zap.String("message", msg))
	}
	JSON(w, http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Message: msg})
}

func NotFound(w http.ResponseWriter, logger *zap.Logger, msg string, err error) {
	if err != nil {
		logger.Warn("not found", zap.String("message", msg), zap.Error(err))
	} else {
		logger.Warn("not found", zap.String("message", msg))
	}
	JSON(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Message: msg})
}

// Error writes err as a coded JSON body. Domain errors keep their code and
// detail; anything else is logged and hidden behind a 500.
func Error(w http.ResponseWriter, logger *zap.Logger, msg string, err error) {
	code, ok := bracket.CodeOf(err)
	if !ok {
		InternalServerError(w, logger, msg, err)
		return
	}

	status := StatusFor(code)
	logger.Warn(msg, zap.String("code", string(code)), zap.Int("status", status), zap.Error(err))
	JSON(w, status, errorBody{Code: string(code), Message: err.Error()})
}

func StatusFor(code bracket.ErrorCode) int {
	switch code {
	case bracket.CodeTournamentNotFound:
		return http.StatusNotFound
	case bracket.CodeInscriptionNotClosed, bracket.CodeTournamentAlreadyStarted:
		return http.StatusConflict
	case bracket.CodeInvalidBracketSize, bracket.CodeBracketTooSmall, bracket.CodeNoParticipants,
		bracket.CodeInvalidConfig, bracket.CodeUnknownFormat:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
