package telemetry

// Slot names one tracked device's cache entry.
type Slot string

const (
	// SlotAerial holds the latest fix from the aerial unit.
	SlotAerial Slot = "aerial"
	// SlotGround holds the latest fix from the ground beacon.
	SlotGround Slot = "ground"
)

// PositionRecord is one decoded positional snapshot from a transmitter.
// It is immutable once constructed; a newer message fully replaces it.
type PositionRecord struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Altitude and Satellites are absent when the message omitted them or
	// carried an unparseable value.
	Altitude   *float64 `json:"altitude,omitempty"`
	Satellites *int     `json:"satellites,omitempty"`

	// Date and Time are carried as opaque strings exactly as transmitted.
	Date string `json:"date,omitempty"`
	Time string `json:"time,omitempty"`
}
