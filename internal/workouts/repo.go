package workouts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fitstack/gymtracker/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrLogNotFound     = errors.New("workout log not found")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) AddSession(ctx context.Context, session Session) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO workout_sessions (member_id, session_date, total_duration, notes)
			VALUES ($1, $2, $3, $4)
		RETURNING id;`,
		session.MemberID, session.SessionDate, session.TotalDuration, session.Notes,
	).Scan(&session.ID)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("session.id", session.ID))
	return &session, nil
}

func (r *Repo) GetSession(ctx context.Context, id int) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.getSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, member_id, session_date, total_duration, notes
			FROM workout_sessions WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions, err := r.rows2sessions(rows)
	if err != nil {
		return nil, err
	}
	if len(sessions) != 1 {
		return nil, ErrSessionNotFound
	}
	return &sessions[0], nil
}

// SessionsForMember returns the member's sessions newest first, optionally
// narrowed to [start, end] on the session date (either bound may be zero).
func (r *Repo) SessionsForMember(ctx context.Context, memberID int, start, end time.Time) (_ []Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sessionsForMember")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("member.id", memberID))

	query := `SELECT id, member_id, session_date, total_duration, notes
		FROM workout_sessions WHERE member_id = $1`
	args := []interface{}{memberID}

	if !start.IsZero() {
		args = append(args, start)
		query += fmt.Sprintf(" AND session_date >= $%d", len(args))
	}
	if !end.IsZero() {
		args = append(args, end)
		query += fmt.Sprintf(" AND session_date <= $%d", len(args))
	}
	query += " ORDER BY session_date DESC, id DESC;"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.rows2sessions(rows)
}

func (r *Repo) UpdateSession(ctx context.Context, id int, params SessionUpdateParams) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.updateSession")
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

	if params.SessionDate != nil {
		addField("session_date", *params.SessionDate)
	}
	if params.TotalDuration != nil {
		addField("total_duration", *params.TotalDuration)
	}
	if params.Notes != nil {
		addField("notes", *params.Notes)
	}

	if len(setClauses) == 0 {
		return 0, nil
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE workout_sessions SET %s WHERE id = $%d;",
		strings.Join(setClauses, ", "), len(args),
	)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteSession removes a session and its logs in one transaction, so a
// half-deleted session can never be observed.
func (r *Repo) DeleteSession(ctx context.Context, id int) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.deleteSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM workout_logs WHERE session_id = $1;`, id); err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM workout_sessions WHERE id = $1;`, id)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) AddLog(ctx context.Context, log Log) (_ *Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addLog")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO workout_logs (session_id, exercise_id, sets, reps, weight, calories_burned)
			VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;`,
		log.SessionID, log.ExerciseID, log.Sets, log.Reps, log.Weight, log.CaloriesBurned,
	).Scan(&log.ID)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("log.id", log.ID))
	return &log, nil
}

func (r *Repo) GetLog(ctx context.Context, id int) (_ *Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.getLog")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, session_id, exercise_id, sets, reps, weight, calories_burned
			FROM workout_logs WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs, err := r.rows2logs(rows)
	if err != nil {
		return nil, err
	}
	if len(logs) != 1 {
		return nil, ErrLogNotFound
	}
	return &logs[0], nil
}

func (r *Repo) LogsForSession(ctx context.Context, sessionID int) (_ []Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.logsForSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session.id", sessionID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, session_id, exercise_id, sets, reps, weight, calories_burned
			FROM workout_logs WHERE session_id = $1 ORDER BY id ASC;`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.rows2logs(rows)
}

// LogsForMember returns all logs across the member's sessions, joined with
// the session date and the exercise name.
func (r *Repo) LogsForMember(ctx context.Context, memberID int) (_ []MemberLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.logsForMember")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("member.id", memberID))

	rows, err := r.db.Query(
		ctx,
		`SELECT l.id, l.session_id, l.exercise_id, l.sets, l.reps, l.weight, l.calories_burned,
				s.session_date, e.name
			FROM workout_logs l
			JOIN workout_sessions s ON s.id = l.session_id
			JOIN exercises e ON e.id = l.exercise_id
			WHERE s.member_id = $1
			ORDER BY s.session_date ASC, l.id ASC;`,
		memberID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]MemberLog, 0)
	for rows.Next() {
		var l MemberLog
		if err := rows.Scan(
			&l.ID, &l.SessionID, &l.ExerciseID, &l.Sets, &l.Reps, &l.Weight, &l.CaloriesBurned,
			&l.SessionDate, &l.ExerciseName,
		); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}

func (r *Repo) UpdateLog(ctx context.Context, id int, params LogUpdateParams) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.updateLog")
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

	if params.ExerciseID != nil {
		addField("exercise_id", *params.ExerciseID)
	}
	if params.Sets != nil {
		addField("sets", *params.Sets)
	}
	if params.Reps != nil {
		addField("reps", *params.Reps)
	}
	if params.Weight != nil {
		addField("weight", *params.Weight)
	}
	if params.CaloriesBurned != nil {
		addField("calories_burned", *params.CaloriesBurned)
	}

	if len(setClauses) == 0 {
		return 0, nil
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE workout_logs SET %s WHERE id = $%d;",
		strings.Join(setClauses, ", "), len(args),
	)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) DeleteLog(ctx context.Context, id int) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.deleteLog")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM workout_logs WHERE id = $1;`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) rows2sessions(rows pgx.Rows) ([]Session, error) {
	sessions := make([]Session, 0)
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.MemberID, &s.SessionDate, &s.TotalDuration, &s.Notes); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *Repo) rows2logs(rows pgx.Rows) ([]Log, error) {
	logs := make([]Log, 0)
	for rows.Next() {
		var l Log
		if err := rows.Scan(&l.ID, &l.SessionID, &l.ExerciseID, &l.Sets, &l.Reps, &l.Weight, &l.CaloriesBurned); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}
