package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestError(t *testing.T) {
	testCases := []struct {
		name         string
		err          error
		expectedCode string
		expectedHTTP int
	}{
		{"not found", bracket.NewError(bracket.CodeTournamentNotFound, "gone"), "TOURNAMENT_NOT_FOUND", http.StatusNotFound},
		{"started", bracket.ErrTournamentAlreadyStarted, "TOURNAMENT_ALREADY_STARTED", http.StatusConflict},
		{"deadline", bracket.ErrInscriptionNotClosed, "INSCRIPTION_NOT_CLOSED", http.StatusConflict},
		{"wrapped size", fmt.Errorf("plan: %w", bracket.ErrInvalidBracketSize), "INVALID_BRACKET_SIZE", http.StatusBadRequest},
		{"too small", bracket.ErrBracketTooSmall, "BRACKET_TOO_SMALL", http.StatusBadRequest},
		{"no participants", bracket.ErrNoParticipants, "NO_PARTICIPANTS", http.StatusBadRequest},
		{"infrastructure", errors.New("disk I/O error"), "INTERNAL", http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, zaptest.NewLogger(t), "generate", tc.err)

			assert.Equal(t, tc.expectedHTTP, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.expectedCode, body.Code)
			assert.NotContains(t, body.Message, "disk", "internal details stay in the log")
		})
	}
}
