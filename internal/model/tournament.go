package model

// TournamentStatus is authored data; nothing in the code moves a tournament
// from one status to the next.
type TournamentStatus string

const (
	TournamentUpcoming  TournamentStatus = "upcoming"
	TournamentOngoing   TournamentStatus = "ongoing"
	TournamentCompleted TournamentStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentUpcoming, TournamentOngoing, TournamentCompleted:
		return true
	}
	return false
}

// Tournament is read-only reference data.
//
// Date is free text ("15 de marzo, 2025", "TBD"), not a time.Time.
type Tournament struct {
	ID           int              `json:"id"`
	Name         string           `json:"name"`
	Date         string           `json:"date"`
	Location     string           `json:"location"`
	Participants int              `json:"participants"`
	Status       TournamentStatus `json:"status"`
	Image        string           `json:"image"`
	Winner       *string          `json:"winner,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Teams        *int             `json:"teams,omitempty"`
}

// Clone returns a copy whose optional fields do not alias t's.
func (t Tournament) Clone() Tournament {
	if t.Winner != nil {
		w := *t.Winner
		t.Winner = &w
	}
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	if t.Teams != nil {
		n := *t.Teams
		t.Teams = &n
	}
	return t
}
