package intake

import (
	"strings"
	"testing"

	"granbokning/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDates = []models.PickupDate{
	{Value: "2025-01-02", Label: "2 januari 2025"},
	{Value: "2025-01-10", Label: "10 januari 2025"},
	{Value: "2025-01-17", Label: "17 januari 2025"},
}

func validSubmission() Submission {
	return Submission{
		Name:           "Anna Andersson",
		Email:          "anna@example.com",
		Phone:          "0701234567",
		Address:        "Storgatan 1, Trollhättan",
		PickupDate:     "2025-01-10",
		TimePreference: "Förmiddag",
		AdditionalInfo: "Granen står vid garaget",
		ConfirmPayment: true,
	}
}

func TestValidate_Success(t *testing.T) {
	v := NewValidator(testDates, true)

	booking, errs := v.Validate(validSubmission())
	require.Nil(t, errs)
	require.NotNil(t, booking)

	assert.Equal(t, "Anna Andersson", booking.Name)
	assert.Equal(t, "anna@example.com", booking.Email)
	assert.Equal(t, "2025-01-10", booking.PickupDate)
	assert.False(t, booking.PickedUp)
}

func TestValidate_TrimsFields(t *testing.T) {
	v := NewValidator(testDates, true)

	sub := validSubmission()
	sub.Name = "  Anna Andersson  "
	sub.Address = "\tStorgatan 1, Trollhättan\n"
	sub.TimePreference = " Förmiddag "

	booking, errs := v.Validate(sub)
	require.Nil(t, errs)
	assert.Equal(t, "Anna Andersson", booking.Name)
	assert.Equal(t, "Storgatan 1, Trollhättan", booking.Address)
	assert.Equal(t, "Förmiddag", booking.TimePreference)
}

func TestValidate_FieldBounds(t *testing.T) {
	v := NewValidator(testDates, true)

	tests := []struct {
		name      string
		mutate    func(*Submission)
		wantField string
	}{
		{"name too short", func(s *Submission) { s.Name = "A" }, "name"},
		{"name too long", func(s *Submission) { s.Name = strings.Repeat("a", 101) }, "name"},
		{"name only whitespace", func(s *Submission) { s.Name = "   " }, "name"},
		{"email missing", func(s *Submission) { s.Email = "" }, "email"},
		{"email invalid", func(s *Submission) { s.Email = "not-an-email" }, "email"},
		{"phone too short", func(s *Submission) { s.Phone = "1234567" }, "phone"},
		{"phone too long", func(s *Submission) { s.Phone = strings.Repeat("1", 21) }, "phone"},
		{"address too short", func(s *Submission) { s.Address = "Gata" }, "address"},
		{"address too long", func(s *Submission) { s.Address = strings.Repeat("a", 201) }, "address"},
		{"date outside set", func(s *Submission) { s.PickupDate = "2025-01-03" }, "pickup_date"},
		{"date empty", func(s *Submission) { s.PickupDate = "" }, "pickup_date"},
		{"time preference empty", func(s *Submission) { s.TimePreference = "" }, "time_preference"},
		{"time preference too long", func(s *Submission) { s.TimePreference = strings.Repeat("a", 101) }, "time_preference"},
		{"additional info too long", func(s *Submission) { s.AdditionalInfo = strings.Repeat("a", 501) }, "additional_info"},
		{"payment not confirmed", func(s *Submission) { s.ConfirmPayment = false }, "confirm_payment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			tt.mutate(&sub)

			booking, errs := v.Validate(sub)
			assert.Nil(t, booking)
			require.NotNil(t, errs)
			assert.Contains(t, errs, tt.wantField)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	v := NewValidator(testDates, true)

	booking, errs := v.Validate(Submission{})
	assert.Nil(t, booking)
	require.NotNil(t, errs)

	for _, field := range []string{"name", "email", "phone", "address", "pickup_date", "time_preference", "confirm_payment"} {
		assert.Contains(t, errs, field)
	}
}

func TestValidate_UnicodeLengthCountsRunes(t *testing.T) {
	v := NewValidator(testDates, true)

	sub := validSubmission()
	sub.Name = "Åsa Öberg"
	sub.AdditionalInfo = strings.Repeat("ö", 500)

	booking, errs := v.Validate(sub)
	require.Nil(t, errs)
	assert.Equal(t, "Åsa Öberg", booking.Name)
}

func TestValidate_EmailNotRequired(t *testing.T) {
	v := NewValidator(testDates, false)

	sub := validSubmission()
	sub.Email = ""

	booking, errs := v.Validate(sub)
	require.Nil(t, errs)
	assert.Empty(t, booking.Email)
}

func TestValidate_EmailDiscardedWhenNotRequired(t *testing.T) {
	v := NewValidator(testDates, false)

	sub := validSubmission()
	sub.Email = "anna@example.com"

	booking, errs := v.Validate(sub)
	require.Nil(t, errs)
	assert.Empty(t, booking.Email)
}

func TestFieldErrors_Error(t *testing.T) {
	errs := FieldErrors{"name": "Vänligen ange ditt namn"}
	assert.Contains(t, errs.Error(), "name: Vänligen ange ditt namn")
}
