package models

import "time"

type Booking struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	PickupDate     string    `json:"pickup_date"` // YYYY-MM-DD, one of the offered dates
	TimePreference string    `json:"time_preference"`
	AdditionalInfo string    `json:"additional_info,omitempty"`
	ConfirmPayment bool      `json:"confirm_payment"`
	PickedUp       bool      `json:"picked_up"`
	CreatedAt      time.Time `json:"created_at"`
}

// PickupDate is one entry of the offered date set. Only these values are
// accepted at intake.
type PickupDate struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// ToggleProposal is a pending picked-up flip awaiting operator confirmation.
// It lives in the admin session state only; nothing is written to the store
// until the proposal is confirmed.
type ToggleProposal struct {
	BookingID int64  `json:"booking_id"`
	Name      string `json:"name"`
	PickedUp  bool   `json:"picked_up"` // target state
}
