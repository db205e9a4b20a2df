package analytics

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fitstack/gymtracker/internal/auth"
	"github.com/fitstack/gymtracker/internal/httpapi"
	"github.com/fitstack/gymtracker/internal/telemetry/tracing"
	"github.com/fitstack/gymtracker/pkg"

	log "github.com/sirupsen/logrus"
)

const (
	defaultWeeks = 12
	maxWeeks     = 52
	defaultLimit = 10
)

type Handler struct {
	analyzer *Analyzer
}

func NewHandler(analyzer *Analyzer) *Handler {
	return &Handler{
		analyzer: analyzer,
	}
}

func (h *Handler) HandleWeeklyVolume(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.weeklyVolume")
	defer span.End()

	memberID, apiErr := h.authorizedMemberID(r)
	if apiErr != nil {
		httpapi.WriteError(w, apiErr)
		return
	}

	weeks := boundedQueryInt(r, "weeks", defaultWeeks, 1, maxWeeks)

	volumes, err := h.analyzer.WeeklyVolumesForMember(ctx, memberID, weeks)
	if err != nil {
		log.Errorf("weekly volume for member [%d]: %s", memberID, err)
		httpapi.WriteError(w, err)
		return
	}

	h.writeJSON(w, volumes)
}

func (h *Handler) HandleWeeklyDuration(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.weeklyDuration")
	defer span.End()

	memberID, apiErr := h.authorizedMemberID(r)
	if apiErr != nil {
		httpapi.WriteError(w, apiErr)
		return
	}

	durations, err := h.analyzer.WeeklyAvgDurationsForMember(ctx, memberID)
	if err != nil {
		log.Errorf("weekly duration for member [%d]: %s", memberID, err)
		httpapi.WriteError(w, err)
		return
	}

	h.writeJSON(w, durations)
}

func (h *Handler) HandleMonthlyMeasurements(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.monthlyMeasurements")
	defer span.End()

	memberID, apiErr := h.authorizedMemberID(r)
	if apiErr != nil {
		httpapi.WriteError(w, apiErr)
		return
	}

	trend, err := h.analyzer.MonthlyMeasurementsForMember(ctx, memberID)
	if err != nil {
		log.Errorf("monthly measurements for member [%d]: %s", memberID, err)
		httpapi.WriteError(w, err)
		return
	}

	h.writeJSON(w, trend)
}

func (h *Handler) HandleTopExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.topExercises")
	defer span.End()

	memberID, apiErr := h.authorizedMemberID(r)
	if apiErr != nil {
		httpapi.WriteError(w, apiErr)
		return
	}

	limit := boundedQueryInt(r, "limit", defaultLimit, 1, 100)

	ranks, err := h.analyzer.TopExercisesForMember(ctx, memberID, limit)
	if err != nil {
		log.Errorf("top exercises for member [%d]: %s", memberID, err)
		httpapi.WriteError(w, err)
		return
	}

	h.writeJSON(w, ranks)
}

func (h *Handler) authorizedMemberID(r *http.Request) (int, *httpapi.Error) {
	caller, ok := auth.FromContext(r.Context())
	if !ok {
		return 0, httpapi.Unauthenticated("missing credentials")
	}

	memberID, err := strconv.Atoi(r.URL.Query().Get("member_id"))
	if err != nil || memberID <= 0 {
		return 0, httpapi.InvalidInput("member_id is required")
	}

	if err := auth.Authorize(caller, auth.ResourceAnalytics, auth.OpRead, memberID); err != nil {
		var apiErr *httpapi.Error
		if errors.As(err, &apiErr) {
			return 0, apiErr
		}
		return 0, httpapi.Forbidden("not authorized")
	}

	return memberID, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal analytics response: %s", err)
		httpapi.WriteError(w, err)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, data)
}

// boundedQueryInt reads an int query param, falling back to defaultValue
// and clamping into [min, max]. Garbage values fall back rather than fail.
func boundedQueryInt(r *http.Request, name string, defaultValue, min, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
