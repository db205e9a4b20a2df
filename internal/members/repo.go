package members

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fitstack/gymtracker/internal/auth"
	"github.com/fitstack/gymtracker/internal/telemetry/tracing"
	"github.com/fitstack/gymtracker/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrUsernameTaken  = errors.New("username already exists")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, member Member) (_ *Member, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.members.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if member.Role == "" {
		member.Role = auth.RoleMember
	}

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO members (name, age, gender, joined_date, phone, email, username, password, role)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id;`,
		member.Name, member.Age, member.Gender, member.JoinedDate,
		member.Phone, member.Email, member.Username, member.Password, member.Role.String(),
	).Scan(&member.ID)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int("member.id", member.ID))
	return &member, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Member, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.members.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, age, gender, joined_date, phone, email, username, password, role
			FROM members WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members, err := r.rows2members(rows)
	if err != nil {
		return nil, err
	}
	if len(members) != 1 {
		return nil, ErrMemberNotFound
	}
	return &members[0], nil
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (_ *Member, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.members.getByUsername")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("username", username))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, age, gender, joined_date, phone, email, username, password, role
			FROM members WHERE username = $1;`,
		username,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members, err := r.rows2members(rows)
	if err != nil {
		return nil, err
	}
	if len(members) != 1 {
		return nil, ErrMemberNotFound
	}
	return &members[0], nil
}

// AccountByUsername implements auth.AccountSource so the authorization gate
// can resolve credentials without depending on this package.
func (r *Repo) AccountByUsername(ctx context.Context, username string) (*auth.Account, error) {
	member, err := r.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, err
	}

	account := &auth.Account{
		Caller: member.Caller(),
	}
	if member.Password != nil {
		account.Password = *member.Password
	}
	return account, nil
}

func (r *Repo) List(ctx context.Context, limit, offset int) (_ []Member, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.members.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, age, gender, joined_date, phone, email, username, password, role
			FROM members ORDER BY id ASC LIMIT $1 OFFSET $2;`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.rows2members(rows)
}

func (r *Repo) ListByName(ctx context.Context, name string) (_ []Member, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.members.listByName")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("name", name))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, age, gender, joined_date, phone, email, username, password, role
			FROM members WHERE name ILIKE $1 ORDER BY id ASC;`,
		"%"+name+"%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.rows2members(rows)
}

func (r *Repo) ListByGender(ctx context.Context, gender string) (_ []Member, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.members.listByGender")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("gender", gender))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, age, gender, joined_date, phone, email, username, password, role
			FROM members WHERE gender = $1 ORDER BY id ASC;`,
		gender,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.rows2members(rows)
}

// Update writes only the fields set in params and reports how many rows
// were affected. An empty params is a no-op, not an error.
func (r *Repo) Update(ctx context.Context, id int, params UpdateParams) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.members.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var setClauses []string
	var args []interface{}
	addField := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Name != nil {
		addField("name", *params.Name)
	}
	if params.Age != nil {
		addField("age", *params.Age)
	}
	if params.Gender != nil {
		addField("gender", *params.Gender)
	}
	if params.JoinedDate != nil {
		addField("joined_date", *params.JoinedDate)
	}
	if params.Phone != nil {
		addField("phone", *params.Phone)
	}
	if params.Email != nil {
		addField("email", *params.Email)
	}
	if params.Username != nil {
		addField("username", *params.Username)
	}
	if params.Password != nil {
		addField("password", *params.Password)
	}
	if params.Role != nil {
		addField("role", params.Role.String())
	}

	if len(setClauses) == 0 {
		return 0, nil
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE members SET %s WHERE id = $%d;",
		strings.Join(setClauses, ", "), len(args),
	)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return 0, ErrUsernameTaken
		}
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) Delete(ctx context.Context, id int) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.members.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM members WHERE id = $1;`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) rows2members(rows pgx.Rows) ([]Member, error) {
	members := make([]Member, 0)
	for rows.Next() {
		var m Member
		var role string
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Age, &m.Gender, &m.JoinedDate,
			&m.Phone, &m.Email, &m.Username, &m.Password, &role,
		); err != nil {
			return nil, err
		}
		m.Role = auth.Role(role)
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return members, nil
}
