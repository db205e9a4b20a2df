package analytics

// WeeklyVolume is the total lifted load for one ISO week, keyed like
// "2025-W07" so keys sort chronologically as plain strings.
type WeeklyVolume struct {
	Week   string  `json:"week"`
	Volume float64 `json:"volume"`
}

// WeeklyDuration is the average session length for one ISO week. Sessions
// without a recorded duration do not count towards the average.
type WeeklyDuration struct {
	Week               string  `json:"week"`
	AvgDurationMinutes float64 `json:"avgDurationMinutes"`
}

// MonthlyMeasurement averages each measured value over a calendar month,
// keyed like "2025-02". A value nobody recorded that month is omitted
// rather than reported as zero.
type MonthlyMeasurement struct {
	Month  string   `json:"month"`
	Weight *float64 `json:"weight,omitempty"`
	Chest  *float64 `json:"chest,omitempty"`
	Arms   *float64 `json:"arms,omitempty"`
	Waist  *float64 `json:"waist,omitempty"`
}

// ExerciseRank is one row of the top-exercises leaderboard.
type ExerciseRank struct {
	ExerciseID     int     `json:"exerciseId"`
	ExerciseName   string  `json:"exerciseName"`
	TimesPerformed int     `json:"timesPerformed"`
	TotalReps      int     `json:"totalReps"`
	TotalLift      float64 `json:"totalLift"`
}
