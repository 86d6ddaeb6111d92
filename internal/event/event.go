package event

type EventType string

// Enum values for the events our discovery session can emit
const (
	DeviceUpdateEvent EventType = "device-update"
	ScanCompleteEvent EventType = "scan-complete"
)

// Event data structure representing any event we may want to react to
type Event struct {
	Type    EventType
	Payload any
}
