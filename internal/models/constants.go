package models

const (
	TabAll      = "all"
	TabPickedUp = "picked-up"
)

const (
	// DefaultSessionTTLHours время жизни админ-сессии
	DefaultSessionTTLHours = 12

	// ProposalTTL seconds a pending toggle proposal stays alive in state storage
	ProposalTTLSeconds = 10 * 60

	// MailQueueSize размер очереди отправки писем
	MailQueueSize = 64

	// DefaultSubmitLimit bookings per window per client
	DefaultSubmitLimit = 5

	// DefaultSubmitWindow окно ограничения частоты заявок
	DefaultSubmitWindowSeconds = 60
)

// Field bounds applied at intake, after trimming.
const (
	NameMinLen           = 2
	NameMaxLen           = 100
	PhoneMinLen          = 8
	PhoneMaxLen          = 20
	AddressMinLen        = 5
	AddressMaxLen        = 200
	TimePreferenceMaxLen = 100
	AdditionalInfoMaxLen = 500
)
