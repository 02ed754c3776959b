package models

import "time"

// Donation statuses form the only allowed lifecycle:
// available -> reserved -> completed.
const (
	DonationAvailable = "available"
	DonationReserved  = "reserved"
	DonationCompleted = "completed"
)

// ValidDonationStatus reports whether s is one of the allowed status values.
func ValidDonationStatus(s string) bool {
	return s == DonationAvailable || s == DonationReserved || s == DonationCompleted
}

// Donation represents a surplus food posting.
type Donation struct {
	ID          int       `db:"id" json:"id"`
	DonorID     int       `db:"donor_id" json:"donor_id"`
	FoodName    string    `db:"food_name" json:"food_name"`
	Quantity    string    `db:"quantity" json:"quantity"`
	ExpiryDate  *string   `db:"expiry_date" json:"expiry_date,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	Location    *string   `db:"location" json:"location,omitempty"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// DonationWithDonor is a donation joined with its donor's public info.
type DonationWithDonor struct {
	Donation
	DonorName  string  `db:"donor_name" json:"donor_name"`
	DonorEmail *string `db:"donor_email" json:"donor_email,omitempty"`
}
