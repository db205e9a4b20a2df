package exercises

// Exercise is a catalog entry shared by all members. Workout logs point at
// it by id, so catalog writes are admin territory while reads are open to
// every authenticated caller.
type Exercise struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	MuscleGroup *string `json:"muscleGroup,omitempty"`
	Equipment   *string `json:"equipment,omitempty"`
}

// UpdateParams carries a partial update: only non-nil fields are written.
type UpdateParams struct {
	Name        *string `json:"name"`
	MuscleGroup *string `json:"muscleGroup"`
	Equipment   *string `json:"equipment"`
}
