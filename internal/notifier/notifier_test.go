package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"granbokning/internal/config"
	"granbokning/internal/events"
	"granbokning/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPayment = config.PaymentConfig{
	Payee:       "Alexander Foxér Eriksson",
	SwishNumber: "073-852 30 62",
	SwishHandle: "@swish-alex",
}

func testBooking() *models.Booking {
	return &models.Booking{
		ID:             1,
		Name:           "Anna Andersson",
		Email:          "anna@example.com",
		Phone:          "0701234567",
		Address:        "Storgatan 1, Trollhättan",
		PickupDate:     "2025-01-10",
		TimePreference: "Förmiddag",
		AdditionalInfo: "Granen står vid garaget",
		CreatedAt:      time.Now(),
	}
}

func TestFormatDateSV(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-01-02", "torsdag 2 januari 2025"},
		{"2025-01-10", "fredag 10 januari 2025"},
		{"2025-01-17", "fredag 17 januari 2025"},
		{"2024-12-24", "tisdag 24 december 2024"},
		{"not-a-date", "not-a-date"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDateSV(tt.in))
	}
}

func TestRenderConfirmation(t *testing.T) {
	html, err := RenderConfirmation(testBooking(), testPayment)
	require.NoError(t, err)

	assert.Contains(t, html, "Tack för din bokning!")
	assert.Contains(t, html, "Hej Anna Andersson,")
	assert.Contains(t, html, "fredag 10 januari 2025")
	assert.Contains(t, html, "Förmiddag")
	assert.Contains(t, html, "Storgatan 1, Trollhättan")
	assert.Contains(t, html, "Granen står vid garaget")
	assert.Contains(t, html, "Alexander Foxér Eriksson")
	assert.Contains(t, html, "073-852 30 62")
	assert.Contains(t, html, "@swish-alex")
}

func TestRenderConfirmation_NoAdditionalInfo(t *testing.T) {
	booking := testBooking()
	booking.AdditionalInfo = ""

	html, err := RenderConfirmation(booking, testPayment)
	require.NoError(t, err)
	assert.NotContains(t, html, "Övrig information")
}

func newTestMailer(endpoint string) *ResendMailer {
	m := NewResendMailer(config.NotificationsConfig{
		Enabled:      true,
		ResendAPIKey: "re_test_key",
		FromEmail:    "Granupphämtning <noreply@granbokning.se>",
		Subject:      "Bekräftelse på din bokning",
	}, testPayment)
	m.endpoint = endpoint
	return m
}

func TestResendMailer_Send(t *testing.T) {
	var gotAuth string
	var gotBody resendRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeResendResponse(w, http.StatusOK, `{"id":"msg-123"}`)
	}))
	defer srv.Close()

	mailer := newTestMailer(srv.URL)
	id, err := mailer.Send(context.Background(), testBooking())
	require.NoError(t, err)

	assert.Equal(t, "msg-123", id)
	assert.Equal(t, "Bearer re_test_key", gotAuth)
	assert.Equal(t, []string{"anna@example.com"}, gotBody.To)
	assert.Equal(t, "Bekräftelse på din bokning", gotBody.Subject)
	assert.Contains(t, gotBody.HTML, "Tack för din bokning!")
}

func TestResendMailer_SendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeResendResponse(w, http.StatusUnprocessableEntity, `{"message":"invalid from"}`)
	}))
	defer srv.Close()

	mailer := newTestMailer(srv.URL)
	_, err := mailer.Send(context.Background(), testBooking())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestResendMailer_SendWithoutEmail(t *testing.T) {
	mailer := newTestMailer("http://unused.invalid")
	booking := testBooking()
	booking.Email = ""

	_, err := mailer.Send(context.Background(), booking)
	assert.Error(t, err)
}

func writeResendResponse(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// stubMailer records sends and optionally fails.
type stubMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *stubMailer) Send(ctx context.Context, booking *models.Booking) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, booking.Email)
	return "msg-1", nil
}

func (m *stubMailer) sentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

func TestDispatcher_DeliversFromEvent(t *testing.T) {
	mailer := &stubMailer{}
	logger := zerolog.Nop()
	dispatcher := NewDispatcher(mailer, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Start(ctx)

	bus := events.NewEventBus()
	bus.Subscribe(events.EventBookingCreated, dispatcher.HandleEvent)

	err := bus.PublishJSON(events.EventBookingCreated, events.BookingEventPayload{
		BookingID: 1,
		Name:      "Anna Andersson",
		Email:     "anna@example.com",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(mailer.sentTo()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "anna@example.com", mailer.sentTo()[0])
}

func TestDispatcher_SwallowsDeliveryFailure(t *testing.T) {
	mailer := &stubMailer{err: errors.New("smtp on fire")}
	logger := zerolog.Nop()
	dispatcher := NewDispatcher(mailer, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Start(ctx)

	// Enqueue never returns an error to the caller.
	dispatcher.Enqueue(testBooking())
	time.Sleep(50 * time.Millisecond)
}

func TestDispatcher_HandleEventBadPayload(t *testing.T) {
	logger := zerolog.Nop()
	dispatcher := NewDispatcher(&stubMailer{}, &logger)

	err := dispatcher.HandleEvent(&events.Event{
		Type:    events.EventBookingCreated,
		Payload: []byte("not json"),
	})
	assert.Error(t, err)
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	mailer := &stubMailer{}
	logger := zerolog.Nop()
	dispatcher := NewDispatcher(mailer, &logger)

	// No worker running: the queue fills up and overflow is dropped.
	for i := 0; i < models.MailQueueSize+10; i++ {
		dispatcher.Enqueue(testBooking())
	}
	assert.Len(t, dispatcher.queue, models.MailQueueSize)
}
