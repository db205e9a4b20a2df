package measurements

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

var ErrMeasurementNotFound = errors.New("measurement not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, measurement Measurement) (_ *Measurement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO measurements (member_id, measure_date, weight, chest, arms, waist, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id;`,
		measurement.MemberID, measurement.MeasureDate,
		measurement.Weight, measurement.Chest, measurement.Arms, measurement.Waist,
		measurement.Notes,
	).Scan(&measurement.ID)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("measurement.id", measurement.ID))
	return &measurement, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Measurement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, member_id, measure_date, weight, chest, arms, waist, notes
			FROM measurements WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	measurements, err := r.rows2measurements(rows)
	if err != nil {
		return nil, err
	}
	if len(measurements) != 1 {
		return nil, ErrMeasurementNotFound
	}
	return &measurements[0], nil
}

// ForMember returns the member's measurements oldest first, the order the
// monthly trend aggregation expects. Either date bound may be zero.
func (r *Repo) ForMember(ctx context.Context, memberID int, start, end time.Time) (_ []Measurement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.forMember")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("member.id", memberID))

	query := `SELECT id, member_id, measure_date, weight, chest, arms, waist, notes
		FROM measurements WHERE member_id = $1`
	args := []interface{}{memberID}

	if !start.IsZero() {
		args = append(args, start)
		query += fmt.Sprintf(" AND measure_date >= $%d", len(args))
	}
	if !end.IsZero() {
		args = append(args, end)
		query += fmt.Sprintf(" AND measure_date <= $%d", len(args))
	}
	query += " ORDER BY measure_date ASC, id ASC;"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.rows2measurements(rows)
}

func (r *Repo) Update(ctx context.Context, id int, params UpdateParams) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.update")
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

	if params.MeasureDate != nil {
		addField("measure_date", *params.MeasureDate)
	}
	if params.Weight != nil {
		addField("weight", *params.Weight)
	}
	if params.Chest != nil {
		addField("chest", *params.Chest)
	}
	if params.Arms != nil {
		addField("arms", *params.Arms)
	}
	if params.Waist != nil {
		addField("waist", *params.Waist)
	}
	if params.Notes != nil {
		addField("notes", *params.Notes)
	}

	if len(setClauses) == 0 {
		return 0, nil
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE measurements SET %s WHERE id = $%d;",
		strings.Join(setClauses, ", "), len(args),
	)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) Delete(ctx context.Context, id int) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM measurements WHERE id = $1;`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) rows2measurements(rows pgx.Rows) ([]Measurement, error) {
	measurements := make([]Measurement, 0)
	for rows.Next() {
		var m Measurement
		if err := rows.Scan(
			&m.ID, &m.MemberID, &m.MeasureDate,
			&m.Weight, &m.Chest, &m.Arms, &m.Waist, &m.Notes,
		); err != nil {
			return nil, err
		}
		measurements = append(measurements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return measurements, nil
}
