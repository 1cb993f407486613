package lamp

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// fallbackDeviceAddress is used when a node ID is not numeric. Gateways
// route unaddressable commands to this well-known maintenance address.
const fallbackDeviceAddress = 2

// Command is the fire-and-forget payload published to a lamp's control
// topic. It always carries both fields so the firmware never has to
// merge partial commands.
type Command struct {
	State    PowerState `json:"lamp_state"`
	DimLevel int        `json:"lamp_dim"`
}

// NewCommand builds the command for a lamp's post-mutation state.
func NewCommand(rec *Record) Command {
	return Command{State: rec.State, DimLevel: rec.DimLevel}
}

// Encode serialises the command to its JSON wire form.
func (c Command) Encode() ([]byte, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding lamp command: %w", err)
	}
	return b, nil
}

// DeviceAddress converts a node ID to the numeric device address used in
// control topics. Non-numeric node IDs fall back to the maintenance
// address; callers should log when that happens.
// Returns the address and true if the node ID parsed as an integer.
func DeviceAddress(nodeID string) (int, bool) {
	addr, err := strconv.Atoi(nodeID)
	if err != nil {
		return fallbackDeviceAddress, false
	}
	return addr, true
}
