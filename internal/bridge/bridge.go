package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-vizio/internal/device"
	"github.com/nerrad567/gray-logic-vizio/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-vizio/internal/session"
)

// persistTimeout bounds the database write triggered by a state change.
const persistTimeout = 5 * time.Second

// MQTTClient is the broker surface the bridge depends on.
// Satisfied by *mqtt.Client.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishRetained(topic string, payload []byte) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	IsConnected() bool
}

// TVSession is the per-device surface the bridge drives.
// Satisfied by *session.Session.
type TVSession interface {
	ID() string
	Connect()
	Disconnect(continuePolling bool)
	TogglePower(ctx context.Context, power *bool)
	SendKey(ctx context.Context, key string)
	LaunchSource(ctx context.Context, name string)
	IsConnected() bool
	IsOn() bool
	Source() string
	SourceList() []string
	Status() string
}

// SessionProvider resolves device IDs to live sessions.
// Satisfied by *session.Manager via an adapter in main.go.
type SessionProvider interface {
	Session(deviceID string) (TVSession, bool)
	Sessions() []TVSession
}

// StateStore persists the last known state per device.
// Satisfied by *device.Registry.
type StateStore interface {
	SaveState(ctx context.Context, id string, state device.PowerState, source string) error
}

// Recorder receives time-series measurements for state changes.
// Satisfied by *tsdb.Client. Nil disables recording.
type Recorder interface {
	WritePowerState(deviceID string, on bool)
	WriteSourceChange(deviceID string, source string)
	WriteConnectivity(deviceID string, connected bool)
}

// Logger abstracts structured logging so the bridge does not depend on a
// specific logging implementation.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Bridge routes MQTT commands to TV sessions and reflects session state
// back onto the bus.
//
// Thread Safety: all exported methods are safe for concurrent use. The
// session event bus may invoke the bridge from session goroutines while
// MQTT handlers run on paho's router goroutine.
type Bridge struct {
	bridgeID string
	version  string
	qos      byte

	mqtt     MQTTClient
	sessions SessionProvider
	bus      *session.Bus
	store    StateStore
	recorder Recorder
	topics   mqtt.Topics

	health   *HealthReporter
	unsubBus func()

	logger   Logger
	loggerMu sync.RWMutex

	startOnce sync.Once
	stopOnce  sync.Once
}

// BridgeOptions configures a Bridge.
type BridgeOptions struct { //nolint:revive // bridge.BridgeOptions reads fine at call sites
	// BridgeID identifies this bridge instance in health messages.
	BridgeID string

	// Version is the build version reported in health messages.
	Version string

	// QoS is the MQTT quality of service for publishes and the command
	// subscription.
	QoS byte

	// MQTT is the broker client. Required.
	MQTT MQTTClient

	// Sessions resolves devices to sessions. Required.
	Sessions SessionProvider

	// Bus is the session event bus the bridge listens on. Required.
	Bus *session.Bus

	// Store persists last known state. Optional.
	Store StateStore

	// Recorder writes time-series measurements. Optional.
	Recorder Recorder

	// HealthInterval is how often health is published. Zero uses the
	// reporter default.
	HealthInterval time.Duration

	// Logger receives structured log output. Optional.
	Logger Logger
}

// NewBridge creates a bridge from the given options.
//
// Returns an error when a required collaborator is missing.
func NewBridge(opts BridgeOptions) (*Bridge, error) {
	if opts.MQTT == nil {
		return nil, fmt.Errorf("bridge: MQTT client is required")
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("bridge: session provider is required")
	}
	if opts.Bus == nil {
		return nil, fmt.Errorf("bridge: event bus is required")
	}

	bridgeID := opts.BridgeID
	if bridgeID == "" {
		bridgeID = "vizio-bridge"
	}

	b := &Bridge{
		bridgeID: bridgeID,
		version:  opts.Version,
		qos:      opts.QoS,
		mqtt:     opts.MQTT,
		sessions: opts.Sessions,
		bus:      opts.Bus,
		store:    opts.Store,
		recorder: opts.Recorder,
		logger:   opts.Logger,
	}

	b.health = NewHealthReporter(HealthReporterOptions{
		BridgeID:  bridgeID,
		Version:   opts.Version,
		Interval:  opts.HealthInterval,
		Publisher: opts.MQTT,
		Counts:    b.sessionCounts,
		Logger:    opts.Logger,
	})

	return b, nil
}

// Start subscribes to the command topic, attaches to the session event
// bus, and begins periodic health reporting. Safe to call once; repeat
// calls are no-ops.
func (b *Bridge) Start(ctx context.Context) error {
	var err error
	b.startOnce.Do(func() {
		if subErr := b.mqtt.Subscribe(b.topics.CommandSubscribe(), b.qos, b.handleCommandMessage); subErr != nil {
			err = fmt.Errorf("bridge: subscribing to commands: %w", subErr)
			return
		}

		b.unsubBus = b.bus.SubscribeAll(b.handleSessionEvent)
		b.health.Start(ctx)

		b.logInfo("bridge started",
			"bridge_id", b.bridgeID,
			"command_topic", b.topics.CommandSubscribe())
	})
	return err
}

// Stop detaches from the event bus and stops health reporting. The MQTT
// client itself is owned by the caller and is not closed here.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		if b.unsubBus != nil {
			b.unsubBus()
		}
		b.health.Stop()
		b.logInfo("bridge stopped", "bridge_id", b.bridgeID)
	})
}

// handleCommandMessage processes one message from the command topic.
//
// Every syntactically valid command produces exactly one ack. Malformed
// payloads are logged and dropped because no command ID exists to
// correlate an ack with.
func (b *Bridge) handleCommandMessage(topic string, payload []byte) error {
	deviceID := deviceIDFromTopic(topic)
	if deviceID == "" {
		b.logWarn("command on malformed topic", "topic", topic)
		return nil
	}

	var cmd CommandMessage
	if err := json.Unmarshal(payload, &cmd); err != nil {
		b.logWarn("dropping malformed command payload",
			"device_id", deviceID,
			"error", err.Error())
		return nil
	}
	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}

	if cmd.DeviceID != "" && cmd.DeviceID != deviceID {
		b.publishAck(newAck(cmd.ID, deviceID, AckFailed, &AckError{
			Code:    ErrCodeInvalidParameters,
			Message: fmt.Sprintf("body device_id %q does not match topic device %q", cmd.DeviceID, deviceID),
		}))
		return nil
	}

	sess, ok := b.sessions.Session(deviceID)
	if !ok {
		b.publishAck(newAck(cmd.ID, deviceID, AckFailed, &AckError{
			Code:    ErrCodeDeviceUnknown,
			Message: fmt.Sprintf("no session for device %q", deviceID),
		}))
		return nil
	}

	if ackErr := b.dispatch(sess, cmd); ackErr != nil {
		b.publishAck(newAck(cmd.ID, deviceID, AckFailed, ackErr))
		return nil
	}

	b.publishAck(newAck(cmd.ID, deviceID, AckAccepted, nil))
	return nil
}

// dispatch routes a command to the session. A nil return means the
// command was handed off; command execution itself is asynchronous and
// reported through state and event messages.
func (b *Bridge) dispatch(sess TVSession, cmd CommandMessage) *AckError {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	switch cmd.Command {
	case CommandPower:
		sess.TogglePower(ctx, cmd.Parameters.Power)
	case CommandPowerOn:
		on := true
		sess.TogglePower(ctx, &on)
	case CommandPowerOff:
		off := false
		sess.TogglePower(ctx, &off)
	case CommandSendKey:
		if cmd.Parameters.Key == "" {
			return &AckError{Code: ErrCodeInvalidParameters, Message: "send_key requires parameters.key"}
		}
		sess.SendKey(ctx, cmd.Parameters.Key)
	case CommandLaunchSource:
		if cmd.Parameters.Source == "" {
			return &AckError{Code: ErrCodeInvalidParameters, Message: "launch_source requires parameters.source"}
		}
		sess.LaunchSource(ctx, cmd.Parameters.Source)
	case CommandConnect:
		sess.Connect()
	case CommandDisconnect:
		sess.Disconnect(!cmd.Parameters.StopPolling)
	default:
		return &AckError{
			Code:    ErrCodeInvalidCommand,
			Message: fmt.Sprintf("unknown command %q", cmd.Command),
		}
	}

	b.logDebug("command dispatched",
		"device_id", sess.ID(),
		"command", cmd.Command,
		"command_id", cmd.ID)
	return nil
}

// handleSessionEvent reflects session activity onto MQTT.
func (b *Bridge) handleSessionEvent(ev session.Event) {
	switch ev.Kind {
	case session.KindUpdate:
		b.publishState(ev.DeviceID)
		b.persistUpdate(ev)
	case session.KindConnected:
		b.publishEvent(ev)
		b.publishState(ev.DeviceID)
		if b.recorder != nil {
			b.recorder.WriteConnectivity(ev.DeviceID, true)
		}
	case session.KindDisconnected:
		b.publishEvent(ev)
		b.publishState(ev.DeviceID)
		if b.recorder != nil {
			b.recorder.WriteConnectivity(ev.DeviceID, false)
		}
	case session.KindConnecting, session.KindPaired, session.KindError:
		b.publishEvent(ev)
	}
}

// publishState publishes the retained state snapshot for a device, read
// from the live session.
func (b *Bridge) publishState(deviceID string) {
	sess, ok := b.sessions.Session(deviceID)
	if !ok {
		return
	}

	power := device.PowerStateOff
	if sess.IsOn() {
		power = device.PowerStateOn
	}

	msg := StateMessage{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		DeviceID:   deviceID,
		Protocol:   mqtt.ProtocolName,
		Power:      string(power),
		Source:     sess.Source(),
		SourceList: sess.SourceList(),
		Connected:  sess.IsConnected(),
		Status:     sess.Status(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		b.logError("marshalling state message", err)
		return
	}
	if err := b.mqtt.PublishRetained(b.topics.State(deviceID), payload); err != nil {
		b.logError("publishing state message", err)
	}
}

// persistUpdate saves the changed attributes and records measurements.
func (b *Bridge) persistUpdate(ev session.Event) {
	if ev.Update == nil {
		return
	}

	if b.recorder != nil {
		if ev.Update.State != nil {
			b.recorder.WritePowerState(ev.DeviceID, *ev.Update.State == device.PowerStateOn)
		}
		if ev.Update.Source != nil {
			b.recorder.WriteSourceChange(ev.DeviceID, *ev.Update.Source)
		}
	}

	if b.store == nil {
		return
	}
	sess, ok := b.sessions.Session(ev.DeviceID)
	if !ok {
		return
	}
	power := device.PowerStateOff
	if sess.IsOn() {
		power = device.PowerStateOn
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := b.store.SaveState(ctx, ev.DeviceID, power, sess.Source()); err != nil {
		b.logError("persisting device state", err)
	}
}

func (b *Bridge) publishEvent(ev session.Event) {
	msg := newEvent(ev.DeviceID, ev.Kind.String(), ev.Message)
	payload, err := json.Marshal(msg)
	if err != nil {
		b.logError("marshalling event message", err)
		return
	}
	if err := b.mqtt.Publish(b.topics.Event(ev.DeviceID), payload, b.qos, false); err != nil {
		b.logError("publishing event message", err)
	}
}

func (b *Bridge) publishAck(ack AckMessage) {
	payload, err := json.Marshal(ack)
	if err != nil {
		b.logError("marshalling ack message", err)
		return
	}
	if err := b.mqtt.Publish(b.topics.Ack(ack.DeviceID), payload, b.qos, false); err != nil {
		b.logError("publishing ack message", err)
	}
}

// sessionCounts reports total and connected session counts for health.
func (b *Bridge) sessionCounts() (total, connected int) {
	all := b.sessions.Sessions()
	for _, s := range all {
		if s.IsConnected() {
			connected++
		}
	}
	return len(all), connected
}

// deviceIDFromTopic extracts the trailing device segment from
// graylogic/command/vizio/{deviceID}.
func deviceIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 {
		return ""
	}
	return parts[3]
}

// SetLogger sets the logger for bridge operations.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	defer b.loggerMu.Unlock()
	b.logger = logger
	b.health.SetLogger(logger)
}

func (b *Bridge) currentLogger() Logger {
	b.loggerMu.RLock()
	defer b.loggerMu.RUnlock()
	return b.logger
}

func (b *Bridge) logDebug(msg string, keysAndValues ...any) {
	if l := b.currentLogger(); l != nil {
		l.Debug(msg, keysAndValues...)
	}
}

func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	if l := b.currentLogger(); l != nil {
		l.Info(msg, keysAndValues...)
	}
}

func (b *Bridge) logWarn(msg string, keysAndValues ...any) {
	if l := b.currentLogger(); l != nil {
		l.Warn(msg, keysAndValues...)
	}
}

func (b *Bridge) logError(msg string, err error) {
	if l := b.currentLogger(); l != nil {
		l.Error(msg, "error", err.Error())
	}
}
