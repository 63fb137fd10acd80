package review

import (
	"time"

	"github.com/irsalhamdi/devcamper/query"
)

type Review struct {
	ID        string    `json:"id" db:"review_id"`
	Bootcamp  query.Ref `json:"bootcamp" db:"bootcamp_id"`
	UserID    string    `json:"user" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Text      string    `json:"text" db:"text"`
	Rating    int       `json:"rating" db:"rating"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type ReviewNew struct {
	Title  string `json:"title" validate:"required,max=100"`
	Text   string `json:"text" validate:"required"`
	Rating int    `json:"rating" validate:"required,min=1,max=10"`
}

type ReviewUp struct {
	Title  *string `json:"title" validate:"omitempty,min=1,max=100"`
	Text   *string `json:"text" validate:"omitempty,min=1"`
	Rating *int    `json:"rating" validate:"omitempty,min=1,max=10"`
}

func (r Review) OwnerID() string { return r.UserID }
