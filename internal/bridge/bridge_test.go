package bridge

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/nerrad567/gray-logic-vizio/internal/device"
	"github.com/nerrad567/gray-logic-vizio/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-vizio/internal/session"
)

type publishedMessage struct {
	topic    string
	payload  []byte
	retained bool
}

type mockMQTT struct {
	mu         sync.Mutex
	connected  bool
	published  []publishedMessage
	subscribed string
	handler    mqtt.MessageHandler
}

func newMockMQTT() *mockMQTT {
	return &mockMQTT{connected: true}
}

func (m *mockMQTT) Publish(topic string, payload []byte, _ byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedMessage{topic, payload, retained})
	return nil
}

func (m *mockMQTT) PublishRetained(topic string, payload []byte) error {
	return m.Publish(topic, payload, 1, true)
}

func (m *mockMQTT) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribed = topic
	m.handler = handler
	return nil
}

func (m *mockMQTT) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// deliver simulates an inbound broker message on the subscribed handler.
func (m *mockMQTT) deliver(t *testing.T, topic string, payload []byte) {
	t.Helper()
	m.mu.Lock()
	handler := m.handler
	m.mu.Unlock()
	if handler == nil {
		t.Fatal("no command handler subscribed")
	}
	if err := handler(topic, payload); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

// onTopic returns the messages published to topics containing the fragment.
func (m *mockMQTT) onTopic(fragment string) []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []publishedMessage
	for _, p := range m.published {
		if strings.Contains(p.topic, fragment) {
			out = append(out, p)
		}
	}
	return out
}

type mockSession struct {
	mu         sync.Mutex
	id         string
	connected  bool
	on         bool
	source     string
	sourceList []string
	status     string

	toggleCalls []*bool
	keys        []string
	launches    []string
	connects    int
	disconnects []bool
}

func (s *mockSession) ID() string { return s.id }

func (s *mockSession) Connect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connects++
}

func (s *mockSession) Disconnect(continuePolling bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnects = append(s.disconnects, continuePolling)
}

func (s *mockSession) TogglePower(_ context.Context, power *bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toggleCalls = append(s.toggleCalls, power)
}

func (s *mockSession) SendKey(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
}

func (s *mockSession) LaunchSource(_ context.Context, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.launches = append(s.launches, name)
}

func (s *mockSession) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *mockSession) IsOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on
}

func (s *mockSession) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

func (s *mockSession) SourceList() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sourceList
}

func (s *mockSession) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

type mockProvider struct {
	mu       sync.Mutex
	sessions map[string]*mockSession
}

func newMockProvider(sessions ...*mockSession) *mockProvider {
	p := &mockProvider{sessions: make(map[string]*mockSession)}
	for _, s := range sessions {
		p.sessions[s.id] = s
	}
	return p
}

func (p *mockProvider) Session(deviceID string) (TVSession, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[deviceID]
	if !ok {
		return nil, false
	}
	return s, true
}

func (p *mockProvider) Sessions() []TVSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]TVSession, 0, len(p.sessions))
	for _, s := range p.sessions {
		out = append(out, s)
	}
	return out
}

type mockStore struct {
	mu    sync.Mutex
	saves []device.StoredState
}

func (m *mockStore) SaveState(_ context.Context, id string, state device.PowerState, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves = append(m.saves, device.StoredState{DeviceID: id, State: state, Source: source})
	return nil
}

type mockRecorder struct {
	mu           sync.Mutex
	power        map[string]bool
	sources      map[string]string
	connectivity map[string]bool
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{
		power:        make(map[string]bool),
		sources:      make(map[string]string),
		connectivity: make(map[string]bool),
	}
}

func (m *mockRecorder) WritePowerState(deviceID string, on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.power[deviceID] = on
}

func (m *mockRecorder) WriteSourceChange(deviceID string, source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[deviceID] = source
}

func (m *mockRecorder) WriteConnectivity(deviceID string, connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity[deviceID] = connected
}

type bridgeFixture struct {
	bridge   *Bridge
	mqtt     *mockMQTT
	bus      *session.Bus
	store    *mockStore
	recorder *mockRecorder
}

func newBridgeFixture(t *testing.T, sessions ...*mockSession) *bridgeFixture {
	t.Helper()

	f := &bridgeFixture{
		mqtt:     newMockMQTT(),
		bus:      session.NewBus(),
		store:    &mockStore{},
		recorder: newMockRecorder(),
	}

	b, err := NewBridge(BridgeOptions{
		BridgeID: "test-bridge",
		Version:  "test",
		QoS:      1,
		MQTT:     f.mqtt,
		Sessions: newMockProvider(sessions...),
		Bus:      f.bus,
		Store:    f.store,
		Recorder: f.recorder,
	})
	if err != nil {
		t.Fatalf("NewBridge() error: %v", err)
	}
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(b.Stop)

	f.bridge = b
	return f
}

func commandPayload(t *testing.T, cmd CommandMessage) []byte {
	t.Helper()
	payload, err := json.Marshal(cmd)
	if err != nil {
		t.Fatalf("marshalling command: %v", err)
	}
	return payload
}

func decodeAck(t *testing.T, p publishedMessage) AckMessage {
	t.Helper()
	var ack AckMessage
	if err := json.Unmarshal(p.payload, &ack); err != nil {
		t.Fatalf("decoding ack: %v", err)
	}
	return ack
}

func TestNewBridgeValidation(t *testing.T) {
	bus := session.NewBus()
	provider := newMockProvider()
	client := newMockMQTT()

	tests := []struct {
		name string
		opts BridgeOptions
	}{
		{"missing mqtt", BridgeOptions{Sessions: provider, Bus: bus}},
		{"missing sessions", BridgeOptions{MQTT: client, Bus: bus}},
		{"missing bus", BridgeOptions{MQTT: client, Sessions: provider}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBridge(tt.opts); err == nil {
				t.Error("NewBridge() = nil error, want error")
			}
		})
	}
}

func TestBridgeSubscribesToCommandTopic(t *testing.T) {
	f := newBridgeFixture(t)
	if f.mqtt.subscribed != "graylogic/command/vizio/+" {
		t.Errorf("subscribed topic = %q", f.mqtt.subscribed)
	}
}

func TestPowerCommandDispatchedAndAcked(t *testing.T) {
	sess := &mockSession{id: "lounge-tv"}
	f := newBridgeFixture(t, sess)

	on := true
	f.mqtt.deliver(t, "graylogic/command/vizio/lounge-tv", commandPayload(t, CommandMessage{
		ID:         "cmd-1",
		Command:    CommandPower,
		Parameters: CommandParameters{Power: &on},
	}))

	if len(sess.toggleCalls) != 1 || sess.toggleCalls[0] == nil || !*sess.toggleCalls[0] {
		t.Errorf("toggle calls = %+v, want one explicit on", sess.toggleCalls)
	}

	acks := f.mqtt.onTopic("ack/vizio/lounge-tv")
	if len(acks) != 1 {
		t.Fatalf("ack count = %d, want 1", len(acks))
	}
	ack := decodeAck(t, acks[0])
	if ack.Status != AckAccepted || ack.CommandID != "cmd-1" {
		t.Errorf("ack = %+v, want accepted cmd-1", ack)
	}
}

func TestPowerOnOffShorthandCommands(t *testing.T) {
	sess := &mockSession{id: "lounge-tv"}
	f := newBridgeFixture(t, sess)

	f.mqtt.deliver(t, "graylogic/command/vizio/lounge-tv",
		commandPayload(t, CommandMessage{ID: "c1", Command: CommandPowerOn}))
	f.mqtt.deliver(t, "graylogic/command/vizio/lounge-tv",
		commandPayload(t, CommandMessage{ID: "c2", Command: CommandPowerOff}))

	if len(sess.toggleCalls) != 2 {
		t.Fatalf("toggle calls = %d, want 2", len(sess.toggleCalls))
	}
	if sess.toggleCalls[0] == nil || !*sess.toggleCalls[0] {
		t.Error("power_on did not request on")
	}
	if sess.toggleCalls[1] == nil || *sess.toggleCalls[1] {
		t.Error("power_off did not request off")
	}
}

func TestSendKeyAndLaunchSource(t *testing.T) {
	sess := &mockSession{id: "lounge-tv"}
	f := newBridgeFixture(t, sess)

	f.mqtt.deliver(t, "graylogic/command/vizio/lounge-tv", commandPayload(t, CommandMessage{
		ID: "c1", Command: CommandSendKey, Parameters: CommandParameters{Key: "VOLUME_UP"},
	}))
	f.mqtt.deliver(t, "graylogic/command/vizio/lounge-tv", commandPayload(t, CommandMessage{
		ID: "c2", Command: CommandLaunchSource, Parameters: CommandParameters{Source: "Netflix"},
	}))

	if len(sess.keys) != 1 || sess.keys[0] != "VOLUME_UP" {
		t.Errorf("keys = %v", sess.keys)
	}
	if len(sess.launches) != 1 || sess.launches[0] != "Netflix" {
		t.Errorf("launches = %v", sess.launches)
	}
}

func TestSendKeyMissingParameterRejected(t *testing.T) {
	sess := &mockSession{id: "lounge-tv"}
	f := newBridgeFixture(t, sess)

	f.mqtt.deliver(t, "graylogic/command/vizio/lounge-tv",
		commandPayload(t, CommandMessage{ID: "c1", Command: CommandSendKey}))

	if len(sess.keys) != 0 {
		t.Errorf("keys = %v, want none", sess.keys)
	}
	acks := f.mqtt.onTopic("ack/")
	if len(acks) != 1 {
		t.Fatalf("ack count = %d, want 1", len(acks))
	}
	ack := decodeAck(t, acks[0])
	if ack.Status != AckFailed || ack.Error == nil || ack.Error.Code != ErrCodeInvalidParameters {
		t.Errorf("ack = %+v, want failed INVALID_PARAMETERS", ack)
	}
}

func TestUnknownCommandRejected(t *testing.T) {
	sess := &mockSession{id: "lounge-tv"}
	f := newBridgeFixture(t, sess)

	f.mqtt.deliver(t, "graylogic/command/vizio/lounge-tv",
		commandPayload(t, CommandMessage{ID: "c1", Command: "reboot"}))

	acks := f.mqtt.onTopic("ack/")
	if len(acks) != 1 {
		t.Fatalf("ack count = %d, want 1", len(acks))
	}
	if ack := decodeAck(t, acks[0]); ack.Error == nil || ack.Error.Code != ErrCodeInvalidCommand {
		t.Errorf("ack = %+v, want INVALID_COMMAND", ack)
	}
}

func TestUnknownDeviceRejected(t *testing.T) {
	f := newBridgeFixture(t)

	f.mqtt.deliver(t, "graylogic/command/vizio/ghost-tv",
		commandPayload(t, CommandMessage{ID: "c1", Command: CommandConnect}))

	acks := f.mqtt.onTopic("ack/vizio/ghost-tv")
	if len(acks) != 1 {
		t.Fatalf("ack count = %d, want 1", len(acks))
	}
	if ack := decodeAck(t, acks[0]); ack.Error == nil || ack.Error.Code != ErrCodeDeviceUnknown {
		t.Errorf("ack = %+v, want DEVICE_UNKNOWN", ack)
	}
}

func TestBodyDeviceMismatchRejected(t *testing.T) {
	sess := &mockSession{id: "lounge-tv"}
	f := newBridgeFixture(t, sess)

	f.mqtt.deliver(t, "graylogic/command/vizio/lounge-tv", commandPayload(t, CommandMessage{
		ID: "c1", DeviceID: "bedroom-tv", Command: CommandConnect,
	}))

	if sess.connects != 0 {
		t.Error("mismatched command was dispatched")
	}
	acks := f.mqtt.onTopic("ack/")
	if len(acks) != 1 {
		t.Fatalf("ack count = %d, want 1", len(acks))
	}
	if ack := decodeAck(t, acks[0]); ack.Error == nil || ack.Error.Code != ErrCodeInvalidParameters {
		t.Errorf("ack = %+v, want INVALID_PARAMETERS", ack)
	}
}

func TestMalformedPayloadDropped(t *testing.T) {
	sess := &mockSession{id: "lounge-tv"}
	f := newBridgeFixture(t, sess)

	f.mqtt.deliver(t, "graylogic/command/vizio/lounge-tv", []byte("{not json"))

	if acks := f.mqtt.onTopic("ack/"); len(acks) != 0 {
		t.Errorf("ack count = %d, want 0 for undecodable payload", len(acks))
	}
}

func TestDisconnectStopPollingParameter(t *testing.T) {
	sess := &mockSession{id: "lounge-tv"}
	f := newBridgeFixture(t, sess)

	f.mqtt.deliver(t, "graylogic/command/vizio/lounge-tv", commandPayload(t, CommandMessage{
		ID: "c1", Command: CommandDisconnect, Parameters: CommandParameters{StopPolling: true},
	}))
	f.mqtt.deliver(t, "graylogic/command/vizio/lounge-tv",
		commandPayload(t, CommandMessage{ID: "c2", Command: CommandDisconnect}))

	want := []bool{false, true}
	if len(sess.disconnects) != 2 || sess.disconnects[0] != want[0] || sess.disconnects[1] != want[1] {
		t.Errorf("disconnect continuePolling args = %v, want %v", sess.disconnects, want)
	}
}

func TestUpdatePublishesRetainedStateAndPersists(t *testing.T) {
	sess := &mockSession{
		id:         "lounge-tv",
		connected:  true,
		on:         true,
		source:     "Netflix",
		sourceList: []string{"HDMI-1", "Netflix"},
		status:     "CONNECTED",
	}
	f := newBridgeFixture(t, sess)

	state := device.PowerStateOn
	src := "Netflix"
	f.bus.Emit(session.Event{
		Kind:     session.KindUpdate,
		DeviceID: "lounge-tv",
		Update:   &session.Update{State: &state, Source: &src},
	})

	states := f.mqtt.onTopic("state/vizio/lounge-tv")
	if len(states) != 1 {
		t.Fatalf("state publish count = %d, want 1", len(states))
	}
	if !states[0].retained {
		t.Error("state message not retained")
	}
	var msg StateMessage
	if err := json.Unmarshal(states[0].payload, &msg); err != nil {
		t.Fatalf("decoding state: %v", err)
	}
	if msg.Power != "ON" || msg.Source != "Netflix" || !msg.Connected {
		t.Errorf("state = %+v", msg)
	}

	if len(f.store.saves) != 1 || f.store.saves[0].State != device.PowerStateOn {
		t.Errorf("saved states = %+v", f.store.saves)
	}
	if on, ok := f.recorder.power["lounge-tv"]; !ok || !on {
		t.Error("power measurement not recorded")
	}
	if f.recorder.sources["lounge-tv"] != "Netflix" {
		t.Error("source measurement not recorded")
	}
}

func TestLifecycleEventsPublished(t *testing.T) {
	sess := &mockSession{id: "lounge-tv", connected: true, on: true, status: "CONNECTED"}
	f := newBridgeFixture(t, sess)

	f.bus.Emit(session.Event{Kind: session.KindConnected, DeviceID: "lounge-tv"})
	f.bus.Emit(session.Event{Kind: session.KindDisconnected, DeviceID: "lounge-tv", Message: "probe failed"})

	events := f.mqtt.onTopic("event/vizio/lounge-tv")
	if len(events) != 2 {
		t.Fatalf("event publish count = %d, want 2", len(events))
	}
	var ev EventMessage
	if err := json.Unmarshal(events[1].payload, &ev); err != nil {
		t.Fatalf("decoding event: %v", err)
	}
	if ev.Event != "disconnected" || ev.Message != "probe failed" {
		t.Errorf("event = %+v", ev)
	}

	// Disconnected was recorded last.
	if connected := f.recorder.connectivity["lounge-tv"]; connected {
		t.Error("connectivity measurement = true, want false after disconnect")
	}
}

func TestDeviceIDFromTopic(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"graylogic/command/vizio/lounge-tv", "lounge-tv"},
		{"graylogic/command/vizio", ""},
		{"graylogic/command/vizio/a/b", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := deviceIDFromTopic(tt.topic); got != tt.want {
			t.Errorf("deviceIDFromTopic(%q) = %q, want %q", tt.topic, got, tt.want)
		}
	}
}
