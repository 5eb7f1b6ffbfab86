package device

import "time"

// TV represents a configured SmartCast television.
// This matches the devices table created by the database package schema.
type TV struct {
	// Identity
	ID   string `json:"id"`
	Name string `json:"name"`

	// Address is the IP address or hostname of the TV on the local network.
	Address string `json:"address"`

	// AuthToken is the pairing token obtained during PIN pairing.
	// Empty until the TV has been paired.
	AuthToken string `json:"auth_token,omitempty"`

	// Wake-on-LAN configuration. MACAddress2 covers TVs with separate
	// wired and wireless interfaces; wake packets are sent to both.
	MACAddress   string `json:"mac_address,omitempty"`
	MACAddress2  string `json:"mac_address2,omitempty"`
	WOLInterface string `json:"wol_interface,omitempty"`
	WOLBroadcast string `json:"wol_broadcast,omitempty"`
	WOLPort      int    `json:"wol_port,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns an independent copy of the TV.
// All fields are value types so a struct copy is sufficient,
// but callers should use Clone rather than rely on that.
func (t *TV) Clone() *TV {
	if t == nil {
		return nil
	}
	cpy := *t
	return &cpy
}

// CanWake reports whether the TV has enough configuration for
// wake-on-LAN power-on attempts.
func (t *TV) CanWake() bool {
	return t.MACAddress != "" || t.MACAddress2 != ""
}

// PowerState represents the reported power state of a TV.
type PowerState string

// PowerState constants.
const (
	PowerStateOn  PowerState = "ON"
	PowerStateOff PowerState = "OFF"
)

// StoredState is the last known state persisted for a TV.
// It survives bridge restarts so the session layer can resume
// with a sensible initial view before the first poll completes.
type StoredState struct {
	DeviceID  string     `json:"device_id"`
	State     PowerState `json:"state"`
	Source    string     `json:"source,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}
