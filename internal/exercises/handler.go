package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fitstack/gymtracker/internal/auth"
	"github.com/fitstack/gymtracker/internal/httpapi"
	"github.com/fitstack/gymtracker/internal/telemetry/tracing"
	"github.com/fitstack/gymtracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=exercises_test

type exercisesRepo interface {
	Add(ctx context.Context, exercise Exercise) (*Exercise, error)
	Get(ctx context.Context, id int) (*Exercise, error)
	List(ctx context.Context) ([]Exercise, error)
	Update(ctx context.Context, id int, params UpdateParams) (int64, error)
	Delete(ctx context.Context, id int) (int64, error)
}

type Handler struct {
	repo exercisesRepo
}

func NewHandler(repo exercisesRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.add")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}
	if err := auth.Authorize(caller, auth.ResourceExerciseCatalog, auth.OpCreate, 0); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	var exercise Exercise
	if err := json.NewDecoder(r.Body).Decode(&exercise); err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid request body"))
		return
	}
	if exercise.Name == "" {
		httpapi.WriteError(w, httpapi.InvalidInput("name is required"))
		return
	}

	added, err := h.repo.Add(ctx, exercise)
	if err != nil {
		log.Errorf("add exercise: %s", err)
		httpapi.WriteError(w, err)
		return
	}

	writeJSONStatus(w, added, http.StatusCreated)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}
	if err := auth.Authorize(caller, auth.ResourceExerciseCatalog, auth.OpRead, 0); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	exercises, err := h.repo.List(ctx)
	if err != nil {
		log.Errorf("list exercises: %s", err)
		httpapi.WriteError(w, err)
		return
	}

	writeJSONStatus(w, exercises, http.StatusOK)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.get")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}
	if err := auth.Authorize(caller, auth.ResourceExerciseCatalog, auth.OpRead, 0); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid exercise id"))
		return
	}

	exercise, err := h.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			httpapi.WriteError(w, httpapi.NotFound("exercise not found"))
			return
		}
		log.Errorf("get exercise [%d]: %s", id, err)
		httpapi.WriteError(w, err)
		return
	}

	writeJSONStatus(w, exercise, http.StatusOK)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.update")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}
	if err := auth.Authorize(caller, auth.ResourceExerciseCatalog, auth.OpUpdate, 0); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid exercise id"))
		return
	}

	var params UpdateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid request body"))
		return
	}
	if params.Name != nil && *params.Name == "" {
		httpapi.WriteError(w, httpapi.InvalidInput("name must not be empty"))
		return
	}

	affected, err := h.repo.Update(ctx, id, params)
	if err != nil {
		log.Errorf("update exercise [%d]: %s", id, err)
		httpapi.WriteError(w, err)
		return
	}
	if affected == 0 {
		httpapi.WriteError(w, httpapi.NotFound("exercise not found"))
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"updated":%d}`, id))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.delete")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}
	if err := auth.Authorize(caller, auth.ResourceExerciseCatalog, auth.OpDelete, 0); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid exercise id"))
		return
	}

	affected, err := h.repo.Delete(ctx, id)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			httpapi.WriteError(w, httpapi.Conflict("exercise is referenced by workout logs"))
			return
		}
		log.Errorf("delete exercise [%d]: %s", id, err)
		httpapi.WriteError(w, err)
		return
	}
	if affected == 0 {
		httpapi.WriteError(w, httpapi.NotFound("exercise not found"))
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"deleted":%d}`, id))
}

func writeJSONStatus(w http.ResponseWriter, payload interface{}, statusCode int) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal exercises response: %s", err)
		httpapi.WriteError(w, err)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, data, statusCode)
}
