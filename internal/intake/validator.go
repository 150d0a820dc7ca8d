package intake

import (
	"net/mail"
	"strings"

	"granbokning/internal/models"
)

// Submission carries raw field values as they arrive from the booking form.
type Submission struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	PickupDate     string `json:"pickup_date"`
	TimePreference string `json:"time_preference"`
	AdditionalInfo string `json:"additional_info"`
	ConfirmPayment bool   `json:"confirm_payment"`
}

// FieldErrors maps a field name to its validation message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// Validator checks a submission against the offered date set and the field
// bounds. Depending on deployment, email is either required or not part of
// the schema at all; the two variants are never mixed.
type Validator struct {
	dates        map[string]bool
	requireEmail bool
}

func NewValidator(dates []models.PickupDate, requireEmail bool) *Validator {
	m := make(map[string]bool, len(dates))
	for _, d := range dates {
		m[d.Value] = true
	}
	return &Validator{dates: m, requireEmail: requireEmail}
}

// Validate trims all string fields, applies the per-field rules independently
// and returns either a normalized booking or the full set of field errors.
// Nothing is persisted here; a failed submission is re-renderable as-is.
func (v *Validator) Validate(sub Submission) (*models.Booking, FieldErrors) {
	errs := make(FieldErrors)

	name := strings.TrimSpace(sub.Name)
	if len([]rune(name)) < models.NameMinLen || len([]rune(name)) > models.NameMaxLen {
		errs["name"] = "Vänligen ange ditt namn"
	}

	email := strings.TrimSpace(sub.Email)
	if v.requireEmail {
		if _, err := mail.ParseAddress(email); err != nil {
			errs["email"] = "Vänligen ange en giltig e-postadress"
		}
	} else {
		// Email is not part of this deployment's schema.
		email = ""
	}

	phone := strings.TrimSpace(sub.Phone)
	if len(phone) < models.PhoneMinLen || len(phone) > models.PhoneMaxLen {
		errs["phone"] = "Vänligen ange ett giltigt telefonnummer"
	}

	address := strings.TrimSpace(sub.Address)
	if len([]rune(address)) < models.AddressMinLen || len([]rune(address)) > models.AddressMaxLen {
		errs["address"] = "Vänligen ange din adress i Trollhättans kommun"
	}

	if !v.dates[sub.PickupDate] {
		errs["pickup_date"] = "Vänligen välj ett datum"
	}

	timePreference := strings.TrimSpace(sub.TimePreference)
	if len([]rune(timePreference)) < 1 || len([]rune(timePreference)) > models.TimePreferenceMaxLen {
		errs["time_preference"] = "Vänligen ange vilken tid som passar dig"
	}

	additionalInfo := strings.TrimSpace(sub.AdditionalInfo)
	if len([]rune(additionalInfo)) > models.AdditionalInfoMaxLen {
		errs["additional_info"] = "Meddelandet är för långt"
	}

	if !sub.ConfirmPayment {
		errs["confirm_payment"] = "Du måste bekräfta att betalning sker senast vid upphämtning"
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &models.Booking{
		Name:           name,
		Email:          email,
		Phone:          phone,
		Address:        address,
		PickupDate:     sub.PickupDate,
		TimePreference: timePreference,
		AdditionalInfo: additionalInfo,
		ConfirmPayment: sub.ConfirmPayment,
	}, nil
}
