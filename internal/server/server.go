package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"attendance-tracker/internal/config"
	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/repository"
	"attendance-tracker/internal/service"

	"github.com/rs/zerolog"
)

// Server is the JSON read/mutation surface over the tracker's store. The
// nightly job never calls it; it exists for clients marking presence and
// reading rosters, streaks and the leaderboard.
type Server struct {
	cfg         *config.Config
	members     *repository.MemberRepository
	attendance  *repository.AttendanceRepository
	streaks     *repository.StreakRepository
	runs        *repository.RunRepository
	leaderboard *service.LeaderboardService
	logger      zerolog.Logger
}

func New(
	cfg *config.Config,
	members *repository.MemberRepository,
	attendance *repository.AttendanceRepository,
	streaks *repository.StreakRepository,
	runs *repository.RunRepository,
	leaderboard *service.LeaderboardService,
	logger zerolog.Logger,
) *Server {
	return &Server{
		cfg:         cfg,
		members:     members,
		attendance:  attendance,
		streaks:     streaks,
		runs:        runs,
		leaderboard: leaderboard,
		logger:      logger,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/members", s.handleListMembers)
	mux.HandleFunc("GET /api/members/{id}/attendance", s.handleMemberAttendance)
	mux.HandleFunc("GET /api/members/{id}/streak", s.handleMemberStreak)
	mux.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /api/attendance/summary", s.handleAttendanceSummary)
	mux.HandleFunc("POST /api/attendance/mark", s.handleMarkAttendance)
	mux.HandleFunc("GET /api/runs/latest", s.handleLatestRun)
	return mux
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.members.ListAll(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	s.respond(w, members)
}

func (s *Server) handleMemberAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid member id"))
		return
	}
	records, err := s.attendance.ListByMember(r.Context(), id)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	type record struct {
		Date      string `json:"date"`
		IsPresent bool   `json:"is_present"`
		TimeIn    string `json:"time_in"`
		TimeOut   string `json:"time_out"`
	}
	out := make([]record, 0, len(records))
	for _, a := range records {
		out = append(out, record{
			Date:      a.Date.Format(domain.DateLayout),
			IsPresent: a.IsPresent,
			TimeIn:    a.TimeIn,
			TimeOut:   a.TimeOut,
		})
	}
	s.respond(w, out)
}

func (s *Server) handleMemberStreak(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid member id"))
		return
	}

	local := time.Now().In(s.cfg.Location)
	monthStart := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, time.UTC)

	streak, err := s.streaks.Get(r.Context(), id, monthStart)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	out := map[string]any{
		"member_id": id,
		"month":     monthStart.Format(domain.DateLayout),
		"streak":    0,
	}
	if streak != nil {
		out["streak"] = *streak
	}
	s.respond(w, out)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.leaderboard.Ranked(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	s.respond(w, entries)
}

func (s *Server) handleAttendanceSummary(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(domain.DateLayout, r.URL.Query().Get("start"))
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid start date, use YYYY-MM-DD"))
		return
	}
	end, err := time.Parse(domain.DateLayout, r.URL.Query().Get("end"))
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid end date, use YYYY-MM-DD"))
		return
	}

	counts, err := s.attendance.DailyCounts(r.Context(), start, end)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	s.respond(w, counts)
}

type markAttendanceRequest struct {
	MemberID      int64  `json:"member_id"`
	Date          string `json:"date"`
	IsPresent     bool   `json:"is_present"`
	HmacSignature string `json:"hmac_signature"`
}

func (s *Server) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	var req markAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	date, err := time.Parse(domain.DateLayout, req.Date)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid date, use YYYY-MM-DD"))
		return
	}

	if !s.verifySignature(req) {
		s.fail(w, r, http.StatusUnauthorized, fmt.Errorf("signature verification failed"))
		return
	}

	marked, err := s.attendance.SetPresence(r.Context(), req.MemberID, date, req.IsPresent, time.Now().In(s.cfg.Location))
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if !marked {
		s.fail(w, r, http.StatusNotFound, fmt.Errorf("no attendance row for member %d on %s", req.MemberID, req.Date))
		return
	}
	s.respond(w, map[string]any{"marked": true})
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.runs.Latest(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if run == nil {
		s.fail(w, r, http.StatusNotFound, fmt.Errorf("no runs recorded yet"))
		return
	}
	s.respond(w, run)
}

// verifySignature checks the HMAC-SHA256 signature over the mutation fields,
// hex-encoded, keyed with the shared secret.
func (s *Server) verifySignature(req markAttendanceRequest) bool {
	mac := hmac.New(sha256.New, []byte(s.cfg.RootSecret))
	fmt.Fprintf(mac, "%d%s%t", req.MemberID, req.Date, req.IsPresent)
	expected := mac.Sum(nil)

	received, err := hex.DecodeString(req.HmacSignature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, received)
}

func (s *Server) respond(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError && !errors.Is(err, sql.ErrNoRows) {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
