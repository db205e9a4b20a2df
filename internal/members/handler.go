package members

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fitstack/gymtracker/internal/auth"
	"github.com/fitstack/gymtracker/internal/httpapi"
	"github.com/fitstack/gymtracker/internal/instrumentation"
	"github.com/fitstack/gymtracker/internal/telemetry/tracing"
	"github.com/fitstack/gymtracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=members_test

type memberRepo interface {
	Add(ctx context.Context, member Member) (*Member, error)
	Get(ctx context.Context, id int) (*Member, error)
	GetByUsername(ctx context.Context, username string) (*Member, error)
	List(ctx context.Context, limit, offset int) ([]Member, error)
	ListByName(ctx context.Context, name string) ([]Member, error)
	ListByGender(ctx context.Context, gender string) ([]Member, error)
	Update(ctx context.Context, id int, params UpdateParams) (int64, error)
	Delete(ctx context.Context, id int) (int64, error)
}

type Handler struct {
	repo  memberRepo
	gate  *auth.Gate
	instr *instrumentation.Instrumentation
}

func NewHandler(repo memberRepo, gate *auth.Gate, instr *instrumentation.Instrumentation) *Handler {
	return &Handler{
		repo:  repo,
		gate:  gate,
		instr: instr,
	}
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.members.login")
	defer span.End()

	creds, err := auth.ResolveCredentials(r)
	if err != nil {
		h.instr.CounterFailedLogins.Inc()
		httpapi.WriteError(w, err)
		return
	}

	caller, err := h.gate.Authenticate(ctx, creds)
	if err != nil {
		h.instr.CounterFailedLogins.Inc()
		log.Tracef("login failed for [%s]: %s", creds.Username, err)
		httpapi.WriteError(w, err)
		return
	}

	h.instr.CounterLogins.Inc()
	log.Printf("member [%s] logged in", caller.Username)

	h.writeJSON(w, caller)
}

// HandleRegisterAdmin creates an admin account. The route is open on
// purpose, matching the bootstrap flow where the first admin has to be
// created before anyone can authenticate.
func (h *Handler) HandleRegisterAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.members.registerAdmin")
	defer span.End()

	member, apiErr := h.decodeNewMember(r)
	if apiErr != nil {
		httpapi.WriteError(w, apiErr)
		return
	}
	if member.Username == nil || *member.Username == "" {
		httpapi.WriteError(w, httpapi.InvalidInput("username is required"))
		return
	}
	if member.Password == nil || *member.Password == "" {
		httpapi.WriteError(w, httpapi.InvalidInput("password is required"))
		return
	}
	member.Role = auth.RoleAdmin

	added, err := h.repo.Add(ctx, *member)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			httpapi.WriteError(w, httpapi.Conflict("username already exists"))
			return
		}
		log.Errorf("register admin: %s", err)
		httpapi.WriteError(w, err)
		return
	}

	log.Printf("admin [%s] registered, id [%d]", *added.Username, added.ID)
	h.writeJSONStatus(w, added, http.StatusCreated)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.FromContext(r.Context())
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}
	h.writeJSON(w, caller)
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.members.add")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}
	if err := auth.Authorize(caller, auth.ResourceMemberProfile, auth.OpCreate, 0); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	member, apiErr := h.decodeNewMember(r)
	if apiErr != nil {
		httpapi.WriteError(w, apiErr)
		return
	}

	// admins are only created through the register route
	member.Role = auth.RoleMember

	added, err := h.repo.Add(ctx, *member)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			httpapi.WriteError(w, httpapi.Conflict("username already exists"))
			return
		}
		log.Errorf("add member: %s", err)
		httpapi.WriteError(w, err)
		return
	}

	h.writeJSONStatus(w, added, http.StatusCreated)
}

// HandleList returns all members for admins. A regular member gets a list
// holding only their own profile, so the endpoint stays usable for both.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.members.list")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}

	if !caller.IsAdmin() {
		member, err := h.repo.Get(ctx, caller.ID)
		if err != nil {
			log.Errorf("list members, get self: %s", err)
			httpapi.WriteError(w, err)
			return
		}
		h.writeJSON(w, []Member{*member})
		return
	}

	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)

	members, err := h.repo.List(ctx, limit, offset)
	if err != nil {
		log.Errorf("list members: %s", err)
		httpapi.WriteError(w, err)
		return
	}

	h.writeJSON(w, members)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.members.get")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid member id"))
		return
	}

	if err := auth.Authorize(caller, auth.ResourceMemberProfile, auth.OpRead, id); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	member, err := h.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			httpapi.WriteError(w, httpapi.NotFound("member not found"))
			return
		}
		log.Errorf("get member [%d]: %s", id, err)
		httpapi.WriteError(w, err)
		return
	}

	h.writeJSON(w, member)
}

func (h *Handler) HandleListByName(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.members.listByName")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}
	if err := auth.Authorize(caller, auth.ResourceMemberProfile, auth.OpList, 0); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	name := mux.Vars(r)["name"]
	if name == "" {
		httpapi.WriteError(w, httpapi.InvalidInput("name is required"))
		return
	}

	members, err := h.repo.ListByName(ctx, name)
	if err != nil {
		log.Errorf("list members by name [%s]: %s", name, err)
		httpapi.WriteError(w, err)
		return
	}

	h.writeJSON(w, members)
}

func (h *Handler) HandleListByGender(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.members.listByGender")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}
	if err := auth.Authorize(caller, auth.ResourceMemberProfile, auth.OpList, 0); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	gender := mux.Vars(r)["gender"]

	members, err := h.repo.ListByGender(ctx, gender)
	if err != nil {
		log.Errorf("list members by gender [%s]: %s", gender, err)
		httpapi.WriteError(w, err)
		return
	}

	h.writeJSON(w, members)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.members.update")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid member id"))
		return
	}

	if err := auth.Authorize(caller, auth.ResourceMemberProfile, auth.OpUpdate, id); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	var params UpdateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid request body"))
		return
	}

	// members can update their own profile, but not promote themselves
	if params.Role != nil {
		if !caller.IsAdmin() {
			httpapi.WriteError(w, httpapi.Forbidden("admin required"))
			return
		}
		if !params.Role.IsValid() {
			httpapi.WriteError(w, httpapi.InvalidInput(fmt.Sprintf("invalid role [%s]", *params.Role)))
			return
		}
	}
	if params.Age != nil && *params.Age < 0 {
		httpapi.WriteError(w, httpapi.InvalidInput("age must not be negative"))
		return
	}

	affected, err := h.repo.Update(ctx, id, params)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			httpapi.WriteError(w, httpapi.Conflict("username already exists"))
			return
		}
		log.Errorf("update member [%d]: %s", id, err)
		httpapi.WriteError(w, err)
		return
	}
	if affected == 0 {
		httpapi.WriteError(w, httpapi.NotFound("member not found"))
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"updated":%d}`, id))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.members.delete")
	defer span.End()

	caller, ok := auth.FromContext(ctx)
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthenticated("missing credentials"))
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpapi.WriteError(w, httpapi.InvalidInput("invalid member id"))
		return
	}

	if err := auth.Authorize(caller, auth.ResourceMemberProfile, auth.OpDelete, id); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	affected, err := h.repo.Delete(ctx, id)
	if err != nil {
		log.Errorf("delete member [%d]: %s", id, err)
		httpapi.WriteError(w, err)
		return
	}
	if affected == 0 {
		httpapi.WriteError(w, httpapi.NotFound("member not found"))
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"deleted":%d}`, id))
}

func (h *Handler) decodeNewMember(r *http.Request) (*Member, *httpapi.Error) {
	var req struct {
		Member
		Password *string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, httpapi.InvalidInput("invalid request body")
	}

	member := req.Member
	member.Password = req.Password

	if member.Name == "" {
		return nil, httpapi.InvalidInput("name is required")
	}
	if member.Age < 0 {
		return nil, httpapi.InvalidInput("age must not be negative")
	}
	if member.Gender == "" {
		return nil, httpapi.InvalidInput("gender is required")
	}
	if member.JoinedDate.IsZero() {
		return nil, httpapi.InvalidInput("joinedDate is required")
	}

	return &member, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, payload interface{}) {
	h.writeJSONStatus(w, payload, http.StatusOK)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, payload interface{}, statusCode int) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal members response: %s", err)
		httpapi.WriteError(w, err)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, data, statusCode)
}

func queryInt(r *http.Request, name string, defaultValue int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}
