package bootcamp

import (
	"time"

	"github.com/lib/pq"
)

type Location struct {
	Type             string    `json:"type"`
	Coordinates      []float64 `json:"coordinates"`
	FormattedAddress string    `json:"formattedAddress"`
	Street           string    `json:"street"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	Zipcode          string    `json:"zipcode"`
	Country          string    `json:"country"`
}

type Bootcamp struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user"`
	Name          string      `json:"name"`
	Slug          string      `json:"slug"`
	Description   string      `json:"description"`
	Website       string      `json:"website,omitempty"`
	Phone         string      `json:"phone,omitempty"`
	Email         string      `json:"email,omitempty"`
	Address       string      `json:"address"`
	Location      *Location   `json:"location,omitempty"`
	Careers       []string    `json:"careers"`
	AverageRating *float64    `json:"averageRating,omitempty"`
	AverageCost   *float64    `json:"averageCost,omitempty"`
	Photo         string      `json:"photo"`
	Housing       bool        `json:"housing"`
	JobAssistance bool        `json:"jobAssistance"`
	JobGuarantee  bool        `json:"jobGuarantee"`
	AcceptGi      bool        `json:"acceptGi"`
	CreatedAt     time.Time   `json:"createdAt"`
	Courses       interface{} `json:"courses,omitempty"`
}

type BootcampNew struct {
	Name          string   `json:"name" validate:"required,max=50"`
	Description   string   `json:"description" validate:"required,max=500"`
	Website       string   `json:"website" validate:"omitempty,url,startswith=http"`
	Phone         string   `json:"phone" validate:"omitempty,max=20"`
	Email         string   `json:"email" validate:"omitempty,email"`
	Address       string   `json:"address" validate:"required"`
	Careers       []string `json:"careers" validate:"required,min=1,dive,career"`
	Housing       bool     `json:"housing"`
	JobAssistance bool     `json:"jobAssistance"`
	JobGuarantee  bool     `json:"jobGuarantee"`
	AcceptGi      bool     `json:"acceptGi"`
}

type BootcampUp struct {
	Name          *string   `json:"name" validate:"omitempty,max=50"`
	Description   *string   `json:"description" validate:"omitempty,max=500"`
	Website       *string   `json:"website" validate:"omitempty,url,startswith=http"`
	Phone         *string   `json:"phone" validate:"omitempty,max=20"`
	Email         *string   `json:"email" validate:"omitempty,email"`
	Address       *string   `json:"address" validate:"omitempty,min=1"`
	Careers       *[]string `json:"careers" validate:"omitempty,min=1,dive,career"`
	Housing       *bool     `json:"housing"`
	JobAssistance *bool     `json:"jobAssistance"`
	JobGuarantee  *bool     `json:"jobGuarantee"`
	AcceptGi      *bool     `json:"acceptGi"`
}

// Summary is what a course or review shows of the bootcamp it belongs to.
type Summary struct {
	ID          string `json:"id" db:"bootcamp_id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

func (b Bootcamp) OwnerID() string { return b.UserID }

// row is the flat table layout of a bootcamp.
type row struct {
	ID               string         `db:"bootcamp_id"`
	UserID           string         `db:"user_id"`
	Name             string         `db:"name"`
	Slug             string         `db:"slug"`
	Description      string         `db:"description"`
	Website          string         `db:"website"`
	Phone            string         `db:"phone"`
	Email            string         `db:"email"`
	Address          string         `db:"address"`
	Longitude        *float64       `db:"longitude"`
	Latitude         *float64       `db:"latitude"`
	FormattedAddress string         `db:"formatted_address"`
	Street           string         `db:"street"`
	City             string         `db:"city"`
	State            string         `db:"state"`
	Zipcode          string         `db:"zipcode"`
	Country          string         `db:"country"`
	Careers          pq.StringArray `db:"careers"`
	AverageRating    *float64       `db:"average_rating"`
	AverageCost      *float64       `db:"average_cost"`
	Photo            string         `db:"photo"`
	Housing          bool           `db:"housing"`
	JobAssistance    bool           `db:"job_assistance"`
	JobGuarantee     bool           `db:"job_guarantee"`
	AcceptGi         bool           `db:"accept_gi"`
	CreatedAt        time.Time      `db:"created_at"`
}

func toRow(b Bootcamp) row {
	r := row{
		ID:            b.ID,
		UserID:        b.UserID,
		Name:          b.Name,
		Slug:          b.Slug,
		Description:   b.Description,
		Website:       b.Website,
		Phone:         b.Phone,
		Email:         b.Email,
		Address:       b.Address,
		Careers:       pq.StringArray(b.Careers),
		AverageRating: b.AverageRating,
		AverageCost:   b.AverageCost,
		Photo:         b.Photo,
		Housing:       b.Housing,
		JobAssistance: b.JobAssistance,
		JobGuarantee:  b.JobGuarantee,
		AcceptGi:      b.AcceptGi,
		CreatedAt:     b.CreatedAt,
	}

	if l := b.Location; l != nil {
		if len(l.Coordinates) == 2 {
			r.Longitude = &l.Coordinates[0]
			r.Latitude = &l.Coordinates[1]
		}
		r.FormattedAddress = l.FormattedAddress
		r.Street = l.Street
		r.City = l.City
		r.State = l.State
		r.Zipcode = l.Zipcode
		r.Country = l.Country
	}
	return r
}

func (r row) bootcamp() Bootcamp {
	b := Bootcamp{
		ID:            r.ID,
		UserID:        r.UserID,
		Name:          r.Name,
		Slug:          r.Slug,
		Description:   r.Description,
		Website:       r.Website,
		Phone:         r.Phone,
		Email:         r.Email,
		Address:       r.Address,
		Careers:       []string(r.Careers),
		AverageRating: r.AverageRating,
		AverageCost:   r.AverageCost,
		Photo:         r.Photo,
		Housing:       r.Housing,
		JobAssistance: r.JobAssistance,
		JobGuarantee:  r.JobGuarantee,
		AcceptGi:      r.AcceptGi,
		CreatedAt:     r.CreatedAt,
	}
	if b.Careers == nil {
		b.Careers = []string{}
	}

	if r.Longitude != nil && r.Latitude != nil {
		b.Location = &Location{
			Type:             "Point",
			Coordinates:      []float64{*r.Longitude, *r.Latitude},
			FormattedAddress: r.FormattedAddress,
			Street:           r.Street,
			City:             r.City,
			State:            r.State,
			Zipcode:          r.Zipcode,
			Country:          r.Country,
		}
	}
	return b
}

func fromRows(rows []row) []Bootcamp {
	bs := make([]Bootcamp, len(rows))
	for i, r := range rows {
		bs[i] = r.bootcamp()
	}
	return bs
}
