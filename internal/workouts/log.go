package workouts

import "time"

// Log is a single exercise performed within a session: the set/rep work
// actually done, with optional load and calorie figures.
type Log struct {
	ID             int      `json:"id"`
	SessionID      int      `json:"sessionId"`
	ExerciseID     int      `json:"exerciseId"`
	Sets           int      `json:"sets"`
	Reps           int      `json:"reps"`
	Weight         *float64 `json:"weight,omitempty"`
	CaloriesBurned *float64 `json:"caloriesBurned,omitempty"`
}

// MemberLog is a log joined with its session date and exercise name, the
// shape the analytics aggregations consume.
type MemberLog struct {
	Log
	SessionDate  time.Time `json:"sessionDate"`
	ExerciseName string    `json:"exerciseName"`
}

type LogUpdateParams struct {
	ExerciseID     *int     `json:"exerciseId"`
	Sets           *int     `json:"sets"`
	Reps           *int     `json:"reps"`
	Weight         *float64 `json:"weight"`
	CaloriesBurned *float64 `json:"caloriesBurned"`
}
