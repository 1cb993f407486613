package mqtt

import "fmt"

// Topic prefixes for the Lampnet MQTT namespace.
//
// Lamp command topics use the fixed scheme lamp/control/{address} where
// address is the numeric device address understood by the LoRa gateways.
// This scheme predates Lampnet Core and is shared with the gateway
// firmware, so it must not change.
const (
	// TopicPrefixControl is the base for lamp command topics.
	TopicPrefixControl = "lamp/control"

	// TopicPrefixSystem is the base for Core system topics.
	TopicPrefixSystem = "lampnet/system"
)

// Topics provides builders for Lampnet MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// LampControl returns the command topic for a lamp's numeric device address.
//
// Example: lamp/control/7
func (Topics) LampControl(address int) string {
	return fmt.Sprintf("%s/%d", TopicPrefixControl, address)
}

// SystemStatus returns the Core online/offline status topic.
//
// Example: lampnet/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}
