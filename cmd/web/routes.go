package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/AdamBeresnev/bracket-engine/internal/httputil"
	"github.com/AdamBeresnev/bracket-engine/internal/middleware"
	"github.com/AdamBeresnev/bracket-engine/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type application struct {
	logger      *zap.Logger
	tournaments *service.TournamentService
	matches     *service.MatchService
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.LoadActor)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/tournaments", app.createTournament)

	r.Route("/tournaments/{id}", func(r chi.Router) {
		r.Post("/generate", app.generateBracket)
		r.Get("/structure", app.getStructure)
		r.Get("/audit", app.getAuditLog)
	})

	r.Get("/matches/{id}", app.getMatch)

	return r
}

func (app *application) createTournament(w http.ResponseWriter, r *http.Request) {
	var input service.CreateTournamentInput
	if err := decodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, app.logger, "Invalid request body", err)
		return
	}

	id, err := app.tournaments.CreateTournament(r.Context(), input)
	if err != nil {
		httputil.Error(w, app.logger, "Failed to create tournament", err)
		return
	}
	httputil.JSON(w, http.StatusCreated, map[string]uuid.UUID{"id": id})
}

func (app *application) generateBracket(w http.ResponseWriter, r *http.Request) {
	tournamentID, ok := app.pathID(w, r, "Invalid tournament ID")
	if !ok {
		return
	}

	var req service.GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, app.logger, "Invalid request body", err)
		return
	}

	actor, _ := middleware.GetUserIDFromContext(r.Context())
	result, err := app.tournaments.GenerateBracket(r.Context(), tournamentID, actor, req)
	if err != nil {
		httputil.Error(w, app.logger, "Failed to generate bracket", err)
		return
	}
	httputil.JSON(w, http.StatusOK, result)
}

func (app *application) getStructure(w http.ResponseWriter, r *http.Request) {
	tournamentID, ok := app.pathID(w, r, "Invalid tournament ID")
	if !ok {
		return
	}

	structure, err := app.tournaments.GetStructure(r.Context(), tournamentID)
	if err != nil {
		httputil.Error(w, app.logger, "Failed to get tournament structure", err)
		return
	}
	httputil.JSON(w, http.StatusOK, structure)
}

func (app *application) getAuditLog(w http.ResponseWriter, r *http.Request) {
	tournamentID, ok := app.pathID(w, r, "Invalid tournament ID")
	if !ok {
		return
	}

	entries, err := app.tournaments.GetAuditLog(r.Context(), tournamentID)
	if err != nil {
		httputil.Error(w, app.logger, "Failed to get audit log", err)
		return
	}
	httputil.JSON(w, http.StatusOK, entries)
}

func (app *application) getMatch(w http.ResponseWriter, r *http.Request) {
	matchID, ok := app.pathID(w, r, "Invalid match ID")
	if !ok {
		return
	}

	data, err := app.matches.GetMatchData(r.Context(), matchID)
	if err != nil {
		if errors.Is(err, service.ErrMatchNotFound) {
			httputil.NotFound(w, app.logger, "Match not found", err)
			return
		}
		httputil.InternalServerError(w, app.logger, "Failed to get match data", err)
		return
	}
	httputil.JSON(w, http.StatusOK, data)
}

func (app *application) pathID(w http.ResponseWriter, r *http.Request, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, app.logger, msg, err)
		return uuid.Nil, false
	}
	return id, true
}

// decodeJSON reads a strict JSON body. An empty body decodes to the zero value.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
