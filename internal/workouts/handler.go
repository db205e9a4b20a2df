package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fitstack/gymtracker/internal/auth"
	"github.com/fitstack/gymtracker/internal/httpapi"
	"github.com/fitstack/gymtracker/internal/telemetry/tracing"
	"github.com/fitstack/gymtracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	AddSession(ctx context.Context, session Session) (*Session, error)
	GetSession(ctx context.Context, id int) (*Session, error)
	SessionsForMember(ctx context.Context, memberID int, start, end time.Time) ([]Session, error)
	UpdateSession(ctx context.Context, id int, params SessionUpdateParams) (int64, error)
	DeleteSession(ctx context.Context, id int) (int64, error)
	AddLog(ctx context.Context, log Log) (*Log, error)
	GetLog(ctx context.Context, id int) (*Log, error)
	LogsForSession(ctx context.Context, sessionID int) ([]Log, error)
	UpdateLog(ctx context.Context, id int, params LogUpdateParams) (int64, error)
	DeleteLog(ctx context.Context, id int) (int64, error)
}

type Handler struct {
	repo workoutsRepo
}

func NewHandler(repo workoutsRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (h *Handler) HandleAddSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addSession")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}

	var session Session
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid request body"))
		return
	}
	if session.MemberID <= 0 {
		httpapi.WriteError(w, httpapi.InvalidInput("memberId is required"))
		return
	}
	if session.SessionDate.IsZero() {
		httpapi.WriteError(w, httpapi.InvalidInput("sessionDate is required"))
		return
	}
	if session.TotalDuration != nil && *session.TotalDuration < 0 {
		httpapi.WriteError(w, httpapi.InvalidInput("totalDuration must not be negative"))
		return
	}

	if err := auth.Authorize(caller, auth.ResourceWorkoutSession, auth.OpCreate, session.MemberID); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	added, err := h.repo.AddSession(ctx, session)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			httpapi.WriteError(w, httpapi.NotFound("member not found"))
			return
		}
		log.Errorf("add session: %s", err)
		httpapi.WriteError(w, err)
		return
	}

	writeJSONStatus(w, added, http.StatusCreated)
}

func (h *Handler) HandleSessionsForMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sessionsForMember")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}

	memberID, err := strconv.Atoi(mux.Vars(r)["memberId"])
	if err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid member id"))
		return
	}

	if err := auth.Authorize(caller, auth.ResourceWorkoutSession, auth.OpRead, memberID); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	start, err := parseDateParam(r, "start")
	if err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid start date"))
		return
	}
	end, err := parseDateParam(r, "end")
	if err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid end date"))
		return
	}

	sessions, err := h.repo.SessionsForMember(ctx, memberID, start, end)
	if err != nil {
		log.Errorf("sessions for member [%d]: %s", memberID, err)
		httpapi.WriteError(w, err)
		return
	}

	writeJSONStatus(w, sessions, http.StatusOK)
}

func (h *Handler) HandleUpdateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.updateSession")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid session id"))
		return
	}

	session, err := h.repo.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			httpapi.WriteError(w, httpapi.NotFound("session not found"))
			return
		}
		log.Errorf("update session [%d], lookup: %s", id, err)
		httpapi.WriteError(w, err)
		return
	}

	if err := auth.Authorize(caller, auth.ResourceWorkoutSession, auth.OpUpdate, session.MemberID); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	var params SessionUpdateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid request body"))
		return
	}
	if params.TotalDuration != nil && *params.TotalDuration < 0 {
		httpapi.WriteError(w, httpapi.InvalidInput("totalDuration must not be negative"))
		return
	}

	if _, err := h.repo.UpdateSession(ctx, id, params); err != nil {
		log.Errorf("update session [%d]: %s", id, err)
		httpapi.WriteError(w, err)
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"updated":%d}`, id))
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.deleteSession")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid session id"))
		return
	}

	session, err := h.repo.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			httpapi.WriteError(w, httpapi.NotFound("session not found"))
			return
		}
		log.Errorf("delete session [%d], lookup: %s", id, err)
		httpapi.WriteError(w, err)
		return
	}

	if err := auth.Authorize(caller, auth.ResourceWorkoutSession, auth.OpDelete, session.MemberID); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	if _, err := h.repo.DeleteSession(ctx, id); err != nil {
		log.Errorf("delete session [%d]: %s", id, err)
		httpapi.WriteError(w, err)
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"deleted":%d}`, id))
}

// HandleAddLog checks the parent session before authorization: a missing
// session is reported as not found even to callers who would not have been
// allowed to touch it, since there is no owner to protect.
func (h *Handler) HandleAddLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addLog")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}

	var workoutLog Log
	if err := json.NewDecoder(r.Body).Decode(&workoutLog); err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid request body"))
		return
	}
	if workoutLog.Sets <= 0 {
		httpapi.WriteError(w, httpapi.InvalidInput("sets must be positive"))
		return
	}
	if workoutLog.Reps <= 0 {
		httpapi.WriteError(w, httpapi.InvalidInput("reps must be positive"))
		return
	}
	if workoutLog.Weight != nil && *workoutLog.Weight < 0 {
		httpapi.WriteError(w, httpapi.InvalidInput("weight must not be negative"))
		return
	}

	session, err := h.repo.GetSession(ctx, workoutLog.SessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			httpapi.WriteError(w, httpapi.NotFound("session not found"))
			return
		}
		log.Errorf("add log, session lookup [%d]: %s", workoutLog.SessionID, err)
		httpapi.WriteError(w, err)
		return
	}

	if err := auth.Authorize(caller, auth.ResourceWorkoutLog, auth.OpCreate, session.MemberID); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	added, err := h.repo.AddLog(ctx, workoutLog)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			httpapi.WriteError(w, httpapi.NotFound("exercise not found"))
			return
		}
		log.Errorf("add log: %s", err)
		httpapi.WriteError(w, err)
		return
	}

	writeJSONStatus(w, added, http.StatusCreated)
}

func (h *Handler) HandleLogsForSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.logsForSession")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}

	sessionID, err := strconv.Atoi(mux.Vars(r)["sessionId"])
	if err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid session id"))
		return
	}

	session, err := h.repo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			httpapi.WriteError(w, httpapi.NotFound("session not found"))
			return
		}
		log.Errorf("logs for session [%d], lookup: %s", sessionID, err)
		httpapi.WriteError(w, err)
		return
	}

	if err := auth.Authorize(caller, auth.ResourceWorkoutLog, auth.OpRead, session.MemberID); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	logs, err := h.repo.LogsForSession(ctx, sessionID)
	if err != nil {
		log.Errorf("logs for session [%d]: %s", sessionID, err)
		httpapi.WriteError(w, err)
		return
	}

	writeJSONStatus(w, logs, http.StatusOK)
}

func (h *Handler) HandleUpdateLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.updateLog")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid log id"))
		return
	}

	session, apiErr := h.logOwnerSession(ctx, id)
	if apiErr != nil {
		httpapi.WriteError(w, apiErr)
		return
	}

	if err := auth.Authorize(caller, auth.ResourceWorkoutLog, auth.OpUpdate, session.MemberID); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	var params LogUpdateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid request body"))
		return
	}
	if params.Sets != nil && *params.Sets <= 0 {
		httpapi.WriteError(w, httpapi.InvalidInput("sets must be positive"))
		return
	}
	if params.Reps != nil && *params.Reps <= 0 {
		httpapi.WriteError(w, httpapi.InvalidInput("reps must be positive"))
		return
	}
	if params.Weight != nil && *params.Weight < 0 {
		httpapi.WriteError(w, httpapi.InvalidInput("weight must not be negative"))
		return
	}

	if _, err := h.repo.UpdateLog(ctx, id, params); err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			httpapi.WriteError(w, httpapi.NotFound("exercise not found"))
			return
		}
		log.Errorf("update log [%d]: %s", id, err)
		httpapi.WriteError(w, err)
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"updated":%d}`, id))
}

func (h *Handler) HandleDeleteLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.deleteLog")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid log id"))
		return
	}

	session, apiErr := h.logOwnerSession(ctx, id)
	if apiErr != nil {
		httpapi.WriteError(w, apiErr)
		return
	}

	if err := auth.Authorize(caller, auth.ResourceWorkoutLog, auth.OpDelete, session.MemberID); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	if _, err := h.repo.DeleteLog(ctx, id); err != nil {
		log.Errorf("delete log [%d]: %s", id, err)
		httpapi.WriteError(w, err)
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"deleted":%d}`, id))
}

// logOwnerSession resolves a log to its parent session, which carries the
// owning member. Both lookups surface as not found before any access check.
func (h *Handler) logOwnerSession(ctx context.Context, logID int) (*Session, error) {
	workoutLog, err := h.repo.GetLog(ctx, logID)
	if err != nil {
		if errors.Is(err, ErrLogNotFound) {
			return nil, httpapi.NotFound("workout log not found")
		}
		log.Errorf("log [%d] lookup: %s", logID, err)
		return nil, err
	}

	session, err := h.repo.GetSession(ctx, workoutLog.SessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, httpapi.NotFound("session not found")
		}
		log.Errorf("log [%d], session lookup [%d]: %s", logID, workoutLog.SessionID, err)
		return nil, err
	}

	return session, nil
}

func parseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func writeJSONStatus(w http.ResponseWriter, payload interface{}, statusCode int) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal workouts response: %s", err)
		httpapi.WriteError(w, err)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, data, statusCode)
}
