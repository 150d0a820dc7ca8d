package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"granbokning/internal/models"
)

const bookingColumns = `id, name, email, phone, address, pickup_date,
                 time_preference, additional_info, confirm_payment,
                 picked_up, created_at`

// CreateBooking inserts a new booking. The store assigns id and created_at
// and forces picked_up to false; the caller's struct is updated in place.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (
				name, email, phone, address, pickup_date,
				time_preference, additional_info, confirm_payment,
				picked_up, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		booking.Name,
		nullable(booking.Email),
		booking.Phone,
		booking.Address,
		booking.PickupDate,
		booking.TimePreference,
		nullable(booking.AdditionalInfo),
		booking.ConfirmPayment,
		false,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.PickedUp = false
	booking.CreatedAt = now

	return nil
}

// ListBookings returns every booking. Order is unspecified; display ordering
// belongs to the triage package.
func (db *DB) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	row := db.QueryRowContext(ctx, query, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// UpdatePickedUp flips the only mutable field and returns the updated record.
func (db *DB) UpdatePickedUp(ctx context.Context, id int64, pickedUp bool) (*models.Booking, error) {
	query := `UPDATE bookings SET picked_up = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, pickedUp, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update picked_up: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, ErrBookingNotFound
	}
	return db.GetBooking(ctx, id)
}

// CountByPickedUp returns how many bookings are still open and how many are
// collected.
func (db *DB) CountByPickedUp(ctx context.Context) (open, collected int, err error) {
	query := `SELECT picked_up, COUNT(*) FROM bookings GROUP BY picked_up`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pickedUp bool
		var count int
		if err := rows.Scan(&pickedUp, &count); err != nil {
			return 0, 0, fmt.Errorf("failed to scan count: %w", err)
		}
		if pickedUp {
			collected = count
		} else {
			open = count
		}
	}
	return open, collected, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	var email, additionalInfo sql.NullString
	err := row.Scan(
		&b.ID, &b.Name, &email, &b.Phone, &b.Address, &b.PickupDate,
		&b.TimePreference, &additionalInfo, &b.ConfirmPayment,
		&b.PickedUp, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Email = email.String
	b.AdditionalInfo = additionalInfo.String
	return b, nil
}

// nullable maps the empty string to NULL so absent optional fields are stored
// as an explicit marker rather than a blank.
func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
