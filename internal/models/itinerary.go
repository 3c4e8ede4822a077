package models

import (
	"strings"
	"time"
)

// Itinerary is an ordered trip plan composed of destination entries.
type Itinerary struct {
	ID          string  `json:"id" db:"id"`
	UserID      string  `json:"user_id" db:"user_id"`
	Title       string  `json:"title" db:"title"`
	Description *string `json:"description,omitempty" db:"description"`

	// ShareCode is issued the first time the itinerary is made public and
	// never regenerated; making it private again keeps the code.
	IsPublic  bool    `json:"is_public" db:"is_public"`
	ShareCode *string `json:"share_code,omitempty" db:"share_code"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ItineraryDestination is one ordered entry of an itinerary. Position is
// assigned as current-max + 1 on insertion and never reassigned on
// removal, so gaps are expected and harmless.
type ItineraryDestination struct {
	ID            string    `json:"id" db:"id"`
	ItineraryID   string    `json:"itinerary_id" db:"itinerary_id"`
	DestinationID string    `json:"destination_id" db:"destination_id"`
	Name          string    `json:"name" db:"name"`
	StartDate     time.Time `json:"start_date" db:"start_date"`
	EndDate       time.Time `json:"end_date" db:"end_date"`
	Notes         *string   `json:"notes,omitempty" db:"notes"`
	Position      int       `json:"position" db:"position"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// ItineraryWithDestinations is the read model: the itinerary plus its
// destinations in ascending position order.
type ItineraryWithDestinations struct {
	Itinerary
	Destinations []ItineraryDestination `json:"destinations"`
}

// TripLengthDays is the inclusive day span from the first destination's
// start date to the last destination's end date, first and last taken by
// position, not by date.
func (i *ItineraryWithDestinations) TripLengthDays() int {
	if len(i.Destinations) == 0 {
		return 0
	}
	first := i.Destinations[0].StartDate
	last := i.Destinations[len(i.Destinations)-1].EndDate
	days := int(last.Sub(first).Hours()/24) + 1
	if days < 0 {
		return 0
	}
	return days
}

// CreateItineraryRequest represents the request to create an itinerary
type CreateItineraryRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description,omitempty"`
}

// Validate validates the create itinerary request
func (r *CreateItineraryRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	return nil
}

// AddDestinationRequest represents the request to append a destination
// to an itinerary
type AddDestinationRequest struct {
	DestinationID string    `json:"destination_id" binding:"required"`
	Name          string    `json:"name" binding:"required"`
	StartDate     time.Time `json:"start_date" binding:"required"`
	EndDate       time.Time `json:"end_date" binding:"required"`
	Notes         *string   `json:"notes,omitempty"`
}

// Validate validates the add destination request
func (r *AddDestinationRequest) Validate() error {
	if strings.TrimSpace(r.DestinationID) == "" {
		return &ValidationError{Field: "destination_id", Message: "is required"}
	}
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return &ValidationError{Field: "start_date", Message: "start_date and end_date are required"}
	}
	if r.EndDate.Before(r.StartDate) {
		return &ValidationError{Field: "end_date", Message: "must be on or after start_date"}
	}
	return nil
}

// UpdateItineraryRequest represents the request to update an itinerary.
// IsPublic is a pointer so a request can leave visibility untouched.
type UpdateItineraryRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description,omitempty"`
	IsPublic    *bool   `json:"is_public,omitempty"`
}

// Validate validates the update itinerary request
func (r *UpdateItineraryRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	return nil
}
