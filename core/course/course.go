package course

import (
	"time"

	"github.com/irsalhamdi/devcamper/query"
)

type Course struct {
	ID                   string    `json:"id" db:"course_id"`
	Bootcamp             query.Ref `json:"bootcamp" db:"bootcamp_id"`
	UserID               string    `json:"user" db:"user_id"`
	Title                string    `json:"title" db:"title"`
	Description          string    `json:"description" db:"description"`
	Weeks                int       `json:"weeks" db:"weeks"`
	Tuition              float64   `json:"tuition" db:"tuition"`
	MinimumSkill         string    `json:"minimumSkill" db:"minimum_skill"`
	ScholarshipAvailable bool      `json:"scholarshipAvailable" db:"scholarship_available"`
	CreatedAt            time.Time `json:"createdAt" db:"created_at"`
}

type CourseNew struct {
	Title                string   `json:"title" validate:"required"`
	Description          string   `json:"description" validate:"required"`
	Weeks                int      `json:"weeks" validate:"required,gte=1"`
	Tuition              *float64 `json:"tuition" validate:"required,gte=0"`
	MinimumSkill         string   `json:"minimumSkill" validate:"required,oneof=beginner intermediate advanced"`
	ScholarshipAvailable bool     `json:"scholarshipAvailable"`
}

type CourseUp struct {
	Title                *string  `json:"title" validate:"omitempty,min=1"`
	Description          *string  `json:"description" validate:"omitempty,min=1"`
	Weeks                *int     `json:"weeks" validate:"omitempty,gte=1"`
	Tuition              *float64 `json:"tuition" validate:"omitempty,gte=0"`
	MinimumSkill         *string  `json:"minimumSkill" validate:"omitempty,oneof=beginner intermediate advanced"`
	ScholarshipAvailable *bool    `json:"scholarshipAvailable"`
}

func (c Course) OwnerID() string { return c.UserID }
