package mqtt

import "fmt"

// Topic scheme shared with the Gray Logic hub.
//
// All bridge topics use the flat scheme: graylogic/{category}/{protocol}/{id}
// where {protocol} is "vizio" for this bridge and {id} is the device
// identifier (or the bridge ID for health).
const (
	// TopicPrefix is the base for all hub topics.
	TopicPrefix = "graylogic"

	// ProtocolName identifies this bridge in the topic hierarchy.
	ProtocolName = "vizio"
)

// Topics provides builders for the bridge's MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// CommandSubscribe returns the wildcard pattern for incoming device commands.
// Pattern: graylogic/command/vizio/+
func (Topics) CommandSubscribe() string {
	return fmt.Sprintf("%s/command/%s/+", TopicPrefix, ProtocolName)
}

// Command returns the command topic for a specific device.
func (Topics) Command(deviceID string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, ProtocolName, deviceID)
}

// State returns the state topic for a specific device.
// State messages are published retained so the hub sees the latest value.
func (Topics) State(deviceID string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, ProtocolName, deviceID)
}

// Ack returns the acknowledgment topic for a specific device.
func (Topics) Ack(deviceID string) string {
	return fmt.Sprintf("%s/ack/%s/%s", TopicPrefix, ProtocolName, deviceID)
}

// Event returns the lifecycle event topic for a specific device.
// Carries connecting/connected/disconnected notifications.
func (Topics) Event(deviceID string) string {
	return fmt.Sprintf("%s/event/%s/%s", TopicPrefix, ProtocolName, deviceID)
}

// Health returns the bridge health topic.
// Published retained; also used as the LWT topic.
func (Topics) Health() string {
	return fmt.Sprintf("%s/health/%s", TopicPrefix, ProtocolName)
}
