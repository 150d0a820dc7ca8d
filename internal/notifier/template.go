package notifier

import (
	"bytes"
	"html/template"
	"time"

	"granbokning/internal/config"
	"granbokning/internal/models"
)

var svWeekdays = [...]string{"söndag", "måndag", "tisdag", "onsdag", "torsdag", "fredag", "lördag"}

var svMonths = [...]string{"januari", "februari", "mars", "april", "maj", "juni",
	"juli", "augusti", "september", "oktober", "november", "december"}

// FormatDateSV renders a YYYY-MM-DD date the way the booking site shows it,
// e.g. "fredag 10 januari 2025". Unparseable input is returned as-is.
func FormatDateSV(value string) string {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return value
	}
	return svWeekdays[t.Weekday()] + " " + t.Format("2") + " " + svMonths[t.Month()-1] + " " + t.Format("2006")
}

const confirmationTemplate = `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <style>
      body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
      .container { max-width: 600px; margin: 0 auto; padding: 20px; }
      .header { background-color: #2d5016; color: white; padding: 20px; text-align: center; }
      .content { background-color: #f9f9f9; padding: 20px; margin: 20px 0; }
      .info-row { margin: 10px 0; }
      .label { font-weight: bold; }
      .footer { text-align: center; color: #666; font-size: 12px; margin-top: 20px; }
    </style>
  </head>
  <body>
    <div class="container">
      <div class="header">
        <h1>Tack för din bokning!</h1>
      </div>
      <div class="content">
        <p>Hej {{.Name}},</p>
        <p>Vi ser framemot att hämta din gran!</p>
        <p><strong>För att underlätta vid upphämtningen går det bra att betala nu till {{.Payee}}</strong></p>
        <div style="background-color: #e8f5e9; padding: 15px; border-radius: 8px; margin: 20px 0;">
          <p style="margin: 0;"><strong>Betala med Swish:</strong></p>
          <p style="margin: 5px 0; font-size: 18px;"><strong>{{.SwishNumber}}</strong></p>
          <p style="margin: 5px 0;">Swish-nummer: <strong>{{.SwishHandle}}</strong></p>
        </div>
        <p><strong>Din bokning:</strong></p>
        <div class="info-row"><span class="label">Datum:</span> {{.PickupDate}}</div>
        <div class="info-row"><span class="label">Tid:</span> {{.TimePreference}}</div>
        <div class="info-row"><span class="label">Adress:</span> {{.Address}}</div>
        {{if .AdditionalInfo}}<div class="info-row"><span class="label">Övrig information:</span> {{.AdditionalInfo}}</div>{{end}}
        <p style="margin-top: 30px;">Med vänliga hälsningar,<br><strong>Granupphämtning i Trollhättan</strong></p>
      </div>
      <div class="footer">
        <p>Detta är ett automatiskt meddelande. Vänligen svara inte på detta e-post.</p>
      </div>
    </div>
  </body>
</html>
`

var confirmationTmpl = template.Must(template.New("confirmation").Parse(confirmationTemplate))

type templateData struct {
	Name           string
	PickupDate     string
	TimePreference string
	Address        string
	AdditionalInfo string
	Payee          string
	SwishNumber    string
	SwishHandle    string
}

// RenderConfirmation builds the HTML body of the confirmation email.
func RenderConfirmation(booking *models.Booking, payment config.PaymentConfig) (string, error) {
	data := templateData{
		Name:           booking.Name,
		PickupDate:     FormatDateSV(booking.PickupDate),
		TimePreference: booking.TimePreference,
		Address:        booking.Address,
		AdditionalInfo: booking.AdditionalInfo,
		Payee:          payment.Payee,
		SwishNumber:    payment.SwishNumber,
		SwishHandle:    payment.SwishHandle,
	}

	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
