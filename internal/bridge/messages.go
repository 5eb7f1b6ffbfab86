package bridge

import (
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-vizio/internal/infrastructure/mqtt"
)

// CommandMessage is the payload received on graylogic/command/vizio/{deviceID}.
//
// The hub addresses a device through the topic; DeviceID in the body is
// optional and, when present, must match the topic segment.
type CommandMessage struct {
	// ID uniquely identifies this command for acknowledgment correlation.
	// Generated by the hub; echoed back in the ack.
	ID string `json:"id"`

	// Timestamp is when the hub issued the command.
	Timestamp time.Time `json:"timestamp"`

	// DeviceID optionally repeats the device identifier from the topic.
	DeviceID string `json:"device_id,omitempty"`

	// Command is the operation to perform. See the Command* constants.
	Command string `json:"command"`

	// Parameters carries command-specific arguments.
	Parameters CommandParameters `json:"parameters,omitempty"`

	// Source identifies what triggered the command (scene, schedule, app).
	Source string `json:"source,omitempty"`
}

// CommandParameters holds the arguments for the commands that take any.
type CommandParameters struct {
	// Power selects an explicit target for the power command.
	// Nil means toggle.
	Power *bool `json:"power,omitempty"`

	// Key names the remote key for the send_key command.
	Key string `json:"key,omitempty"`

	// Source names the input or app for the launch_source command.
	Source string `json:"source,omitempty"`

	// StopPolling stops background polling for the disconnect command.
	StopPolling bool `json:"stop_polling,omitempty"`
}

// Supported command verbs.
const (
	CommandPower        = "power"
	CommandPowerOn      = "power_on"
	CommandPowerOff     = "power_off"
	CommandSendKey      = "send_key"
	CommandLaunchSource = "launch_source"
	CommandConnect      = "connect"
	CommandDisconnect   = "disconnect"
)

// AckStatus indicates the outcome of a command.
type AckStatus string

// Acknowledgment status values.
const (
	// AckAccepted means the command was dispatched to the device session.
	AckAccepted AckStatus = "accepted"

	// AckFailed means the command could not be dispatched.
	AckFailed AckStatus = "failed"
)

// Ack error codes.
const (
	ErrCodeDeviceUnknown     = "DEVICE_UNKNOWN"
	ErrCodeInvalidCommand    = "INVALID_COMMAND"
	ErrCodeInvalidParameters = "INVALID_PARAMETERS"
	ErrCodeBridgeError       = "BRIDGE_ERROR"
)

// AckMessage is published on graylogic/ack/vizio/{deviceID} for every
// command received, whether dispatched or rejected.
type AckMessage struct {
	// CommandID echoes the ID of the command being acknowledged.
	CommandID string `json:"command_id"`

	Timestamp time.Time `json:"timestamp"`
	DeviceID  string    `json:"device_id"`
	Status    AckStatus `json:"status"`
	Protocol  string    `json:"protocol"`

	// Error is set when Status is failed.
	Error *AckError `json:"error,omitempty"`
}

// AckError describes why a command failed.
type AckError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StateMessage is the retained snapshot published on
// graylogic/state/vizio/{deviceID} whenever an attribute changes.
type StateMessage struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	DeviceID  string    `json:"device_id"`
	Protocol  string    `json:"protocol"`

	// Power is the reported power state: ON or OFF.
	Power string `json:"power"`

	// Source is the active input or app, empty when unknown.
	Source string `json:"source,omitempty"`

	// SourceList enumerates the launchable inputs and apps.
	SourceList []string `json:"source_list,omitempty"`

	// Connected reports whether the session holds a live API connection.
	Connected bool `json:"connected"`

	// Status is the session lifecycle phase, including the transitional
	// POWERING_ON and POWERING_OFF phases.
	Status string `json:"status"`
}

// EventMessage is published on graylogic/event/vizio/{deviceID} for
// lifecycle transitions (connecting, connected, disconnected, error).
type EventMessage struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	DeviceID  string    `json:"device_id"`
	Protocol  string    `json:"protocol"`
	Event     string    `json:"event"`
	Message   string    `json:"message,omitempty"`
}

// HealthMessage is published retained on graylogic/health/vizio.
type HealthMessage struct {
	BridgeID      string    `json:"bridge_id"`
	Timestamp     time.Time `json:"timestamp"`
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	UptimeSeconds int64     `json:"uptime_seconds"`

	// DeviceCount is the number of managed TV sessions.
	DeviceCount int `json:"device_count"`

	// ConnectedCount is how many of those sessions are currently connected.
	ConnectedCount int `json:"connected_count"`
}

func newAck(commandID, deviceID string, status AckStatus, ackErr *AckError) AckMessage {
	return AckMessage{
		CommandID: commandID,
		Timestamp: time.Now().UTC(),
		DeviceID:  deviceID,
		Status:    status,
		Protocol:  mqtt.ProtocolName,
		Error:     ackErr,
	}
}

func newEvent(deviceID, event, message string) EventMessage {
	return EventMessage{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		DeviceID:  deviceID,
		Protocol:  mqtt.ProtocolName,
		Event:     event,
		Message:   message,
	}
}
