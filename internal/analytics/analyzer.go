package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fitstack/gymtracker/internal/measurements"
	"github.com/fitstack/gymtracker/internal/telemetry/tracing"
	"github.com/fitstack/gymtracker/internal/workouts"

	"go.opentelemetry.io/otel/attribute"
)

type logsSource interface {
	LogsForMember(ctx context.Context, memberID int) ([]workouts.MemberLog, error)
}

type sessionsSource interface {
	SessionsForMember(ctx context.Context, memberID int, start, end time.Time) ([]workouts.Session, error)
}

type measurementsSource interface {
	ForMember(ctx context.Context, memberID int, start, end time.Time) ([]measurements.Measurement, error)
}

// Analyzer computes progress aggregations over a member's raw records. All
// grouping and averaging happens in memory on data fetched per request, so
// results always reflect the current state of the store.
type Analyzer struct {
	logs         logsSource
	sessions     sessionsSource
	measurements measurementsSource
}

func NewAnalyzer(logs logsSource, sessions sessionsSource, measurements measurementsSource) *Analyzer {
	return &Analyzer{
		logs:         logs,
		sessions:     sessions,
		measurements: measurements,
	}
}

func (a *Analyzer) WeeklyVolumesForMember(ctx context.Context, memberID, weeks int) (_ []WeeklyVolume, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.weeklyVolumes")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("member.id", memberID), attribute.Int("weeks", weeks))

	logs, err := a.logs.LogsForMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return WeeklyVolumes(logs, weeks, time.Now()), nil
}

func (a *Analyzer) WeeklyAvgDurationsForMember(ctx context.Context, memberID int) (_ []WeeklyDuration, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.weeklyDurations")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("member.id", memberID))

	sessions, err := a.sessions.SessionsForMember(ctx, memberID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	return WeeklyAvgDurations(sessions), nil
}

func (a *Analyzer) MonthlyMeasurementsForMember(ctx context.Context, memberID int) (_ []MonthlyMeasurement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.monthlyMeasurements")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("member.id", memberID))

	ms, err := a.measurements.ForMember(ctx, memberID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	return MonthlyMeasurements(ms), nil
}

func (a *Analyzer) TopExercisesForMember(ctx context.Context, memberID, limit int) (_ []ExerciseRank, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.topExercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("member.id", memberID), attribute.Int("limit", limit))

	logs, err := a.logs.LogsForMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return TopExercises(logs, limit), nil
}

// WeeklyVolumes sums sets*reps*weight per ISO week over the trailing
// `weeks` weeks ending at now; older logs are ignored, so a member who
// stopped training gets an empty result rather than stale weeks. A log
// without a weight counts zero towards volume but still claims its week.
func WeeklyVolumes(logs []workouts.MemberLog, weeks int, now time.Time) []WeeklyVolume {
	// whole days are in or out of the window, regardless of time of day
	cy, cm, cd := now.AddDate(0, 0, -7*weeks).Date()
	cutoff := time.Date(cy, cm, cd, 0, 0, 0, 0, now.Location())

	byWeek := make(map[string]float64)
	for _, l := range logs {
		if weeks > 0 && l.SessionDate.Before(cutoff) {
			continue
		}
		byWeek[weekKey(l.SessionDate)] += logVolume(l)
	}

	keys := sortedKeys(byWeek)
	if weeks > 0 && len(keys) > weeks {
		keys = keys[len(keys)-weeks:]
	}

	result := make([]WeeklyVolume, 0, len(keys))
	for _, k := range keys {
		result = append(result, WeeklyVolume{Week: k, Volume: byWeek[k]})
	}
	return result
}

// WeeklyAvgDurations averages recorded session durations per ISO week.
// A week whose sessions all lack a duration is dropped entirely.
func WeeklyAvgDurations(sessions []workouts.Session) []WeeklyDuration {
	type agg struct {
		sum   int
		count int
	}
	byWeek := make(map[string]*agg)
	for _, s := range sessions {
		if s.TotalDuration == nil {
			continue
		}
		k := weekKey(s.SessionDate)
		if byWeek[k] == nil {
			byWeek[k] = &agg{}
		}
		byWeek[k].sum += *s.TotalDuration
		byWeek[k].count++
	}

	result := make([]WeeklyDuration, 0, len(byWeek))
	for _, k := range sortedKeys(byWeek) {
		a := byWeek[k]
		result = append(result, WeeklyDuration{
			Week:               k,
			AvgDurationMinutes: float64(a.sum) / float64(a.count),
		})
	}
	return result
}

// MonthlyMeasurements averages each measured value per calendar month,
// skipping unrecorded values rather than treating them as zero.
func MonthlyMeasurements(ms []measurements.Measurement) []MonthlyMeasurement {
	type agg struct {
		sums   [4]float64
		counts [4]int
	}
	byMonth := make(map[string]*agg)
	for _, m := range ms {
		k := m.MeasureDate.Format("2006-01")
		if byMonth[k] == nil {
			byMonth[k] = &agg{}
		}
		for i, v := range []*float64{m.Weight, m.Chest, m.Arms, m.Waist} {
			if v != nil {
				byMonth[k].sums[i] += *v
				byMonth[k].counts[i]++
			}
		}
	}

	result := make([]MonthlyMeasurement, 0, len(byMonth))
	for _, k := range sortedKeys(byMonth) {
		a := byMonth[k]
		mean := func(i int) *float64 {
			if a.counts[i] == 0 {
				return nil
			}
			v := a.sums[i] / float64(a.counts[i])
			return &v
		}
		result = append(result, MonthlyMeasurement{
			Month:  k,
			Weight: mean(0),
			Chest:  mean(1),
			Arms:   mean(2),
			Waist:  mean(3),
		})
	}
	return result
}

// TopExercises ranks exercises by how often they appear in the logs,
// breaking ties by exercise id so equal counts order deterministically.
func TopExercises(logs []workouts.MemberLog, limit int) []ExerciseRank {
	byExercise := make(map[int]*ExerciseRank)
	for _, l := range logs {
		rank := byExercise[l.ExerciseID]
		if rank == nil {
			rank = &ExerciseRank{
				ExerciseID:   l.ExerciseID,
				ExerciseName: l.ExerciseName,
			}
			byExercise[l.ExerciseID] = rank
		}
		rank.TimesPerformed++
		rank.TotalReps += l.Sets * l.Reps
		rank.TotalLift += logVolume(l)
	}

	result := make([]ExerciseRank, 0, len(byExercise))
	for _, rank := range byExercise {
		result = append(result, *rank)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TimesPerformed != result[j].TimesPerformed {
			return result[i].TimesPerformed > result[j].TimesPerformed
		}
		return result[i].ExerciseID < result[j].ExerciseID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

func logVolume(l workouts.MemberLog) float64 {
	weight := 0.0
	if l.Weight != nil {
		weight = *l.Weight
	}
	return float64(l.Sets) * float64(l.Reps) * weight
}

func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
