package domain

const (
	RideStatusActive    = "ACTIVE"
	RideStatusCompleted = "COMPLETED"
	RideStatusCancelled = "CANCELLED"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusRefunded  = "REFUNDED"
)

const (
	MessageKindText  = "TEXT"
	MessageKindAudio = "AUDIO"
	MessageKindImage = "IMAGE"
)

const (
	NotifRideJoined      = "RIDE_JOINED"
	NotifPaymentReceived = "PAYMENT_RECEIVED"
	NotifRideCancelled   = "RIDE_CANCELLED"
)

// Code lengths per call site. The display code is public (shown on ride
// listings), the join code is private to one participant, the access code
// gates the ride chat channel and rotates on every settlement.
const (
	DisplayCodeLength = 6
	JoinCodeLength    = 10
	AccessCodeLength  = 8
)
