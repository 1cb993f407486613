package lamp

import "time"

// PowerState is a lamp's on/off state as carried on the wire.
// The uppercase values are shared with the gateway firmware and must not change.
type PowerState string

const (
	// PowerOn indicates the lamp is switched on.
	PowerOn PowerState = "ON"

	// PowerOff indicates the lamp is switched off.
	PowerOff PowerState = "OFF"
)

// IsValid returns true if the power state is one of the recognised values.
func (p PowerState) IsValid() bool {
	return p == PowerOn || p == PowerOff
}

// Dim level bounds and default for newly registered lamps.
const (
	MinDimLevel     = 0
	MaxDimLevel     = 100
	DefaultDimLevel = 50
)

// Record represents a lamp known to the orchestrator.
// Field names follow the wire format shared with the gateways:
// gw_id identifies the LoRa gateway, node_id the lamp node behind it.
type Record struct {
	NodeID    string     `json:"node_id"`
	GatewayID string     `json:"gw_id"`
	State     PowerState `json:"lamp_state"`
	DimLevel  int        `json:"lamp_dim"`
	Lux       float64    `json:"lux"`
	CurrentA  float64    `json:"current_a"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Patch holds the optional fields of a control request. Nil fields are
// left untouched on update; on first registration they fall back to the
// column defaults (state OFF, dim level 50, readings zero).
type Patch struct {
	State    *PowerState
	DimLevel *int
	Lux      *float64
	CurrentA *float64
}

// IsEmpty returns true if the patch carries no fields at all.
func (p Patch) IsEmpty() bool {
	return p.State == nil && p.DimLevel == nil && p.Lux == nil && p.CurrentA == nil
}

// Validate checks the patch fields against their allowed ranges.
func (p Patch) Validate() error {
	if p.State != nil && !p.State.IsValid() {
		return ErrInvalidState
	}
	if p.DimLevel != nil && (*p.DimLevel < MinDimLevel || *p.DimLevel > MaxDimLevel) {
		return ErrInvalidDimLevel
	}
	return nil
}
