package models

import "time"

// Exercise is a single logged activity belonging to a user.
type Exercise struct {
	ID          string
	UserID      string
	Description string
	Duration    float64
	Date        time.Time
}

// ExerciseFilter selects a user's exercises. From and To are inclusive
// bounds; a nil bound is not applied. Limit <= 0 means no cap.
type ExerciseFilter struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Limit  int
}
