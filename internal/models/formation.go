package models

import "time"

// Formation is a training offering with a fixed number of seats.
type Formation struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Description    *string   `db:"description" json:"description,omitempty"`
	AvailableSpots int       `db:"available_spots" json:"availableSpots"`
	StartDate      time.Time `db:"start_date" json:"startDate"`
	EndDate        time.Time `db:"end_date" json:"endDate"`
	InstructorID   *string   `db:"instructor_id" json:"instructorId,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// FormationCapacity is a formation with its live seat usage.
type FormationCapacity struct {
	Formation
	ActiveEnrollments int `db:"active_enrollments" json:"activeEnrollments"`
	RemainingSpots    int `db:"remaining_spots" json:"remainingSpots"`
}

// RemainingSpots never reports a negative value, even if capacity was lowered
// below the number of active enrollments.
func RemainingSpots(availableSpots, active int) int {
	if remaining := availableSpots - active; remaining > 0 {
		return remaining
	}
	return 0
}
