package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"foodcycle-realtime/internal/models"
)

var ErrDonationNotFound = errors.New("donation not found")

// DonationInput carries the writable fields of a new donation.
type DonationInput struct {
	DonorID     int     `json:"donor_id"`
	FoodName    string  `json:"food_name"`
	Quantity    string  `json:"quantity"`
	ExpiryDate  *string `json:"expiry_date"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
}

// DonationRepository abstracts donation persistence.
type DonationRepository interface {
	ListByStatus(ctx context.Context, status string) ([]models.DonationWithDonor, error)
	Get(ctx context.Context, donationID int) (models.DonationWithDonor, error)
	Create(ctx context.Context, input DonationInput) (models.Donation, error)
	UpdateStatus(ctx context.Context, donationID int, status string) error
	Delete(ctx context.Context, donationID int) error
	ListByDonor(ctx context.Context, donorID int) ([]models.Donation, error)
}

// DonationRepo is a sqlx implementation of DonationRepository.
type DonationRepo struct {
	db *sqlx.DB
}

// NewDonationRepo constructs a DonationRepo.
func NewDonationRepo(db *sqlx.DB) *DonationRepo {
	return &DonationRepo{db: db}
}

// ListByStatus returns donations in the given status, newest first, with the
// donor's name joined in.
func (r *DonationRepo) ListByStatus(ctx context.Context, status string) ([]models.DonationWithDonor, error) {
	query := `SELECT d.id, d.donor_id, d.food_name, d.quantity, d.expiry_date, d.description, d.location, d.status, d.created_at,
            u.name AS donor_name
        FROM donations d
        JOIN users u ON d.donor_id = u.id
        WHERE d.status = $1
        ORDER BY d.created_at DESC`
	var donations []models.DonationWithDonor
	err := r.db.SelectContext(ctx, &donations, query, status)
	return donations, err
}

// Get fetches a single donation with donor contact info.
func (r *DonationRepo) Get(ctx context.Context, donationID int) (models.DonationWithDonor, error) {
	query := `SELECT d.id, d.donor_id, d.food_name, d.quantity, d.expiry_date, d.description, d.location, d.status, d.created_at,
            u.name AS donor_name, u.email AS donor_email
        FROM donations d
        JOIN users u ON d.donor_id = u.id
        WHERE d.id = $1`
	var donation models.DonationWithDonor
	err := r.db.GetContext(ctx, &donation, query, donationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DonationWithDonor{}, ErrDonationNotFound
	}
	return donation, err
}

// Create stores a new donation; status starts as available.
func (r *DonationRepo) Create(ctx context.Context, input DonationInput) (models.Donation, error) {
	var donation models.Donation
	err := r.db.QueryRowxContext(ctx, `INSERT INTO donations (donor_id, food_name, quantity, expiry_date, description, location)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, donor_id, food_name, quantity, expiry_date, description, location, status, created_at`,
		input.DonorID, input.FoodName, input.Quantity, input.ExpiryDate, input.Description, input.Location).
		StructScan(&donation)
	return donation, err
}

// UpdateStatus moves a donation to a new lifecycle status.
func (r *DonationRepo) UpdateStatus(ctx context.Context, donationID int, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE donations SET status = $1 WHERE id = $2`, status, donationID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrDonationNotFound
	}
	return nil
}

// Delete removes a donation.
func (r *DonationRepo) Delete(ctx context.Context, donationID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM donations WHERE id = $1`, donationID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrDonationNotFound
	}
	return nil
}

// ListByDonor returns all donations posted by one donor, newest first.
func (r *DonationRepo) ListByDonor(ctx context.Context, donorID int) ([]models.Donation, error) {
	var donations []models.Donation
	err := r.db.SelectContext(ctx, &donations,
		`SELECT id, donor_id, food_name, quantity, expiry_date, description, location, status, created_at
        FROM donations WHERE donor_id = $1 ORDER BY created_at DESC`, donorID)
	return donations, err
}
