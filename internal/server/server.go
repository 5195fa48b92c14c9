package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"padel-league/internal/domain"
	"padel-league/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// LeagueServer exposes the JSON API: registration, match creation,
// settlement, leaderboard, and per-player rating history.
type LeagueServer struct {
	playerSvc *service.PlayerService
	matchSvc  *service.MatchService
	processor *service.Processor
	logger    zerolog.Logger
}

func NewLeagueServer(playerSvc *service.PlayerService, matchSvc *service.MatchService, processor *service.Processor, logger zerolog.Logger) *LeagueServer {
	return &LeagueServer{playerSvc: playerSvc, matchSvc: matchSvc, processor: processor, logger: logger}
}

func (s *LeagueServer) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/players", s.registerPlayer)
		r.Get("/players/{id}", s.getPlayer)
		r.Get("/players/{id}/history", s.getHistory)
		r.Get("/leaderboard", s.getLeaderboard)
		r.Post("/matches", s.createMatch)
		r.Get("/matches/{id}", s.getMatch)
		r.Get("/matches/{id}/points", s.getPointDetail)
		r.Post("/matches/{id}/result", s.settleMatch)
	})
}

type registerPlayerRequest struct {
	Name  string   `json:"name"`
	Level *float64 `json:"level,omitempty"`
}

func (s *LeagueServer) registerPlayer(w http.ResponseWriter, r *http.Request) {
	var req registerPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	player, err := s.playerSvc.Register(r.Context(), req.Name, req.Level)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, toPlayerResponse(player))
}

func (s *LeagueServer) getPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := s.playerSvc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, "player not found")
		return
	}
	s.respondJSON(w, http.StatusOK, toPlayerResponse(player))
}

func (s *LeagueServer) getHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.playerSvc.History(r.Context(), chi.URLParam(r, "id"), queryLimit(r))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"history": entries})
}

// queryLimit reads the optional ?limit= parameter; anything absent or
// unparseable falls through to the service defaults.
func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}

func (s *LeagueServer) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	players, err := s.playerSvc.Leaderboard(r.Context(), queryLimit(r))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}

	entries := make([]playerResponse, len(players))
	for i := range players {
		entries[i] = toPlayerResponse(&players[i])
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

type createMatchRequest struct {
	Kind  string    `json:"kind"`
	Seats [4]string `json:"seats"`
}

func (s *LeagueServer) createMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	match, err := s.matchSvc.Create(r.Context(), req.Kind, req.Seats)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, toMatchResponse(match))
}

func (s *LeagueServer) getMatch(w http.ResponseWriter, r *http.Request) {
	match, err := s.matchSvc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, "match not found")
		return
	}
	s.respondJSON(w, http.StatusOK, toMatchResponse(match))
}

func (s *LeagueServer) getPointDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.matchSvc.PointDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, "point detail not found")
		return
	}
	s.respondJSON(w, http.StatusOK, detail)
}

type settleMatchRequest struct {
	Result  string            `json:"result"`
	Kind    string            `json:"kind,omitempty"`
	Surface string            `json:"surface,omitempty"`
	Weather string            `json:"weather,omitempty"`
	Outdoor bool              `json:"outdoor,omitempty"`
	Moods   map[string]string `json:"moods,omitempty"`
}

func (s *LeagueServer) settleMatch(w http.ResponseWriter, r *http.Request) {
	var req settleMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.processor.ProcessMatchResults(
		r.Context(),
		chi.URLParam(r, "id"),
		domain.MatchKind(req.Kind),
		req.Result,
		service.MatchContext{
			Surface: req.Surface,
			Weather: req.Weather,
			Outdoor: req.Outdoor,
			Moods:   req.Moods,
		},
	)
	if err != nil {
		status := http.StatusInternalServerError
		if service.IsValidationError(err) {
			status = http.StatusUnprocessableEntity
		}
		s.respondJSON(w, status, res)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

type playerResponse struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Level         float64        `json:"level"`
	Points        int            `json:"points"`
	MatchesPlayed int            `json:"matchesPlayed"`
	Wins          int            `json:"wins"`
	Streak        int            `json:"streak"`
	SubRatings    map[string]int `json:"subRatings"`
}

func toPlayerResponse(p *domain.Player) playerResponse {
	return playerResponse{
		ID:            p.ID,
		Name:          p.Name,
		Level:         p.Level,
		Points:        p.Points,
		MatchesPlayed: p.MatchesPlayed,
		Wins:          p.Wins,
		Streak:        p.Streak,
		SubRatings:    p.SubRatings,
	}
}

type matchResponse struct {
	ID     string    `json:"id"`
	Kind   string    `json:"kind"`
	Seats  [4]string `json:"seats"`
	Status string    `json:"status"`
	Result string    `json:"result,omitempty"`
}

func toMatchResponse(m *domain.Match) matchResponse {
	var seats [4]string
	for i, seat := range m.Seats {
		seats[i] = seat.Encode()
	}
	return matchResponse{
		ID:     m.ID,
		Kind:   string(m.Kind),
		Seats:  seats,
		Status: string(m.Status),
		Result: m.Result,
	}
}

func (s *LeagueServer) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *LeagueServer) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}
