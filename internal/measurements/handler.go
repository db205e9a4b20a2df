package measurements

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

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=measurements_test

type measurementsRepo interface {
	Add(ctx context.Context, measurement Measurement) (*Measurement, error)
	Get(ctx context.Context, id int) (*Measurement, error)
	ForMember(ctx context.Context, memberID int, start, end time.Time) ([]Measurement, error)
	Update(ctx context.Context, id int, params UpdateParams) (int64, error)
	Delete(ctx context.Context, id int) (int64, error)
}

type Handler struct {
	repo measurementsRepo
}

func NewHandler(repo measurementsRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.add")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}

	var measurement Measurement
	if err := json.NewDecoder(r.Body).Decode(&measurement); err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid request body"))
		return
	}
	if measurement.MemberID <= 0 {
		httpapi.WriteError(w, httpapi.InvalidInput("memberId is required"))
		return
	}
	if measurement.MeasureDate.IsZero() {
		httpapi.WriteError(w, httpapi.InvalidInput("measureDate is required"))
		return
	}
	if apiErr := validateValues(
		measurement.Weight, measurement.Chest, measurement.Arms, measurement.Waist,
	); apiErr != nil {
		httpapi.WriteError(w, apiErr)
		return
	}

	if err := auth.Authorize(caller, auth.ResourceBodyMeasurement, auth.OpCreate, measurement.MemberID); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	added, err := h.repo.Add(ctx, measurement)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			httpapi.WriteError(w, httpapi.NotFound("member not found"))
			return
		}
		log.Errorf("add measurement: %s", err)
		httpapi.WriteError(w, err)
		return
	}

	writeJSONStatus(w, added, http.StatusCreated)
}

func (h *Handler) HandleForMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.forMember")
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

	if err := auth.Authorize(caller, auth.ResourceBodyMeasurement, auth.OpRead, memberID); err != nil {
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

	measurements, err := h.repo.ForMember(ctx, memberID, start, end)
	if err != nil {
		log.Errorf("measurements for member [%d]: %s", memberID, err)
		httpapi.WriteError(w, err)
		return
	}

	writeJSONStatus(w, measurements, http.StatusOK)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.update")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid measurement id"))
		return
	}

	measurement, err := h.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMeasurementNotFound) {
			httpapi.WriteError(w, httpapi.NotFound("measurement not found"))
			return
		}
		log.Errorf("update measurement [%d], lookup: %s", id, err)
		httpapi.WriteError(w, err)
		return
	}

	if err := auth.Authorize(caller, auth.ResourceBodyMeasurement, auth.OpUpdate, measurement.MemberID); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	var params UpdateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid request body"))
		return
	}
	if apiErr := validateValues(params.Weight, params.Chest, params.Arms, params.Waist); apiErr != nil {
		httpapi.WriteError(w, apiErr)
		return
	}

	if _, err := h.repo.Update(ctx, id, params); err != nil {
		log.Errorf("update measurement [%d]: %s", id, err)
		httpapi.WriteError(w, err)
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"updated":%d}`, id))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.delete")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid measurement id"))
		return
	}

	measurement, err := h.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMeasurementNotFound) {
			httpapi.WriteError(w, httpapi.NotFound("measurement not found"))
			return
		}
		log.Errorf("delete measurement [%d], lookup: %s", id, err)
		httpapi.WriteError(w, err)
		return
	}

	if err := auth.Authorize(caller, auth.ResourceBodyMeasurement, auth.OpDelete, measurement.MemberID); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	if _, err := h.repo.Delete(ctx, id); err != nil {
		log.Errorf("delete measurement [%d]: %s", id, err)
		httpapi.WriteError(w, err)
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"deleted":%d}`, id))
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

func validateValues(values ...*float64) *httpapi.Error {
	for _, v := range values {
		if v != nil && *v < 0 {
			return httpapi.InvalidInput("measurement values must not be negative")
		}
	}
	return nil
}

func writeJSONStatus(w http.ResponseWriter, payload interface{}, statusCode int) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal measurements response: %s", err)
		httpapi.WriteError(w, err)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, data, statusCode)
}
