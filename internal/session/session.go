package session

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-vizio/internal/device"
	"github.com/nerrad567/gray-logic-vizio/internal/smartcast"
)

// Timing holds the session's transition windows and loop intervals.
// Zero fields select the defaults; tests shrink them to keep runs fast.
type Timing struct {
	// PowerOnWindow is how long a power-on transition is considered
	// in progress after it is requested.
	PowerOnWindow time.Duration

	// PowerOffWindow is how long new power commands are locked out
	// after a power-off is issued. Panels take tens of seconds to
	// fully shut down and reject power commands during that window.
	PowerOffWindow time.Duration

	// PollInterval is the gap between poll iterations.
	PollInterval time.Duration

	// PollInitialDelay is slept before the first poll iteration.
	PollInitialDelay time.Duration

	// SettleDelay is slept between a successful connect and the
	// start of polling.
	SettleDelay time.Duration

	// WakeAttempts is how many wake packets the power-on sequence
	// sends before giving up.
	WakeAttempts int

	// WakeInterval is slept between wake attempts.
	WakeInterval time.Duration
}

// DefaultTiming returns the production timing profile.
func DefaultTiming() Timing {
	return Timing{
		PowerOnWindow:    15 * time.Second,
		PowerOffWindow:   65 * time.Second,
		PollInterval:     10 * time.Second,
		PollInitialDelay: 1 * time.Second,
		SettleDelay:      1 * time.Second,
		WakeAttempts:     7,
		WakeInterval:     2 * time.Second,
	}
}

// withDefaults fills zero fields from the production profile.
func (t Timing) withDefaults() Timing {
	def := DefaultTiming()
	if t.PowerOnWindow == 0 {
		t.PowerOnWindow = def.PowerOnWindow
	}
	if t.PowerOffWindow == 0 {
		t.PowerOffWindow = def.PowerOffWindow
	}
	if t.PollInterval == 0 {
		t.PollInterval = def.PollInterval
	}
	if t.PollInitialDelay == 0 {
		t.PollInitialDelay = def.PollInitialDelay
	}
	if t.SettleDelay == 0 {
		t.SettleDelay = def.SettleDelay
	}
	if t.WakeAttempts == 0 {
		t.WakeAttempts = def.WakeAttempts
	}
	if t.WakeInterval == 0 {
		t.WakeInterval = def.WakeInterval
	}
	return t
}

// Logger is the interface for structured logging.
// This allows any logging implementation to be used.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// ClientFactory builds a device client for a TV. Injectable so tests
// can substitute a mock for the SmartCast HTTP client.
type ClientFactory func(tv device.TV) smartcast.Client

// defaultClientFactory builds the production SmartCast client.
func defaultClientFactory(tv device.TV) smartcast.Client {
	return smartcast.New(smartcast.Options{
		Address:   tv.Address,
		AuthToken: tv.AuthToken,
	})
}

// Session owns the connection lifecycle of one television.
//
// A session is created when its TV configuration is added and closed
// when the configuration is removed. All public operations are safe
// for concurrent use; device calls never hold the session lock.
//
// Control operations follow a never-throw contract: a failing vendor
// call degrades to a logged no-op. Only the connect liveness probe
// tears the session down.
type Session struct {
	id        string
	bus       *Bus
	newClient ClientFactory
	wake      WakeFunc
	timing    Timing

	mu            sync.Mutex
	tv            device.TV
	client        smartcast.Client
	connected     bool
	connecting    bool
	isOn          bool
	source        string
	inputs        []string
	apps          []string
	endOfPowerOn  time.Time
	endOfPowerOff time.Time
	connectCancel context.CancelFunc
	pollCancel    context.CancelFunc
	recon         reconciler

	// Shutdown coordination
	ctx       context.Context
	ctxCancel context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once

	// Logger
	logger   Logger
	loggerMu sync.RWMutex
}

// SessionOptions holds configuration for creating a session.
type SessionOptions struct { //nolint:revive // session.SessionOptions reads fine at call sites
	// TV is the device configuration.
	TV device.TV

	// Bus receives lifecycle and update events. Optional.
	Bus *Bus

	// Logger is optional structured logger.
	Logger Logger

	// Timing overrides transition windows and intervals. Zero
	// fields keep the defaults.
	Timing Timing

	// NewClient overrides the device client factory. Optional.
	NewClient ClientFactory

	// Wake overrides the wake-packet sender. Optional.
	Wake WakeFunc
}

// NewSession creates a session for one TV. Call Connect to establish
// the device connection and Close to release the session.
func NewSession(opts SessionOptions) (*Session, error) {
	if opts.TV.ID == "" {
		return nil, fmt.Errorf("device id is required")
	}

	factory := opts.NewClient
	if factory == nil {
		factory = defaultClientFactory
	}
	wake := opts.Wake
	if wake == nil {
		wake = SendMagicPacket
	}

	ctx, ctxCancel := context.WithCancel(context.Background())

	return &Session{
		id:        opts.TV.ID,
		bus:       opts.Bus,
		newClient: factory,
		wake:      wake,
		timing:    opts.Timing.withDefaults(),
		tv:        opts.TV,
		ctx:       ctx,
		ctxCancel: ctxCancel,
		logger:    opts.Logger,
	}, nil
}

// ID returns the device identifier. Fixed for the session's lifetime.
func (s *Session) ID() string {
	return s.id
}

// Config returns a copy of the current device configuration.
func (s *Session) Config() device.TV {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.tv.Clone()
}

// UpdateConfig replaces the device configuration. Callers push a
// refreshed address here before asking for a reconnect; the change
// takes effect on the next connect attempt. The identifier cannot
// change for the lifetime of a session.
func (s *Session) UpdateConfig(tv device.TV) {
	s.mu.Lock()
	s.tv = *tv.Clone()
	s.tv.ID = s.id
	s.mu.Unlock()
}

// IsConnected reports whether a live device connection exists.
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected && s.client != nil
}

// IsOn reports the current power view, including the optimistic ON
// set while a power-on sequence is still confirming.
func (s *Session) IsOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOn
}

// Source returns the active input or app name, empty if unknown.
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// SourceList returns the sorted union of physical inputs and
// launchable app names.
func (s *Session) SourceList() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sourceListLocked()
}

func (s *Session) sourceListLocked() []string {
	merged := make([]string, 0, len(s.inputs)+len(s.apps))
	merged = append(merged, s.inputs...)
	merged = append(merged, s.apps...)
	slices.Sort(merged)
	return slices.Compact(merged)
}

// PowerOnInProgress reports whether a power-on was recently requested
// and its window has not yet expired.
func (s *Session) PowerOnInProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.powerOnInProgressLocked(time.Now())
}

// PowerOffInProgress reports whether a power-off lockout is active.
func (s *Session) PowerOffInProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.powerOffInProgressLocked(time.Now())
}

func (s *Session) powerOnInProgressLocked(now time.Time) bool {
	return !s.endOfPowerOn.IsZero() && s.endOfPowerOn.After(now)
}

func (s *Session) powerOffInProgressLocked(now time.Time) bool {
	return !s.endOfPowerOff.IsZero() && s.endOfPowerOff.After(now)
}

// Status returns the externally visible power state, with the
// transitional states derived from the deadline windows.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	switch {
	case s.powerOnInProgressLocked(now):
		return "POWERING_ON"
	case s.powerOffInProgressLocked(now):
		return "POWERING_OFF"
	case s.isOn:
		return string(device.PowerStateOn)
	default:
		return string(device.PowerStateOff)
	}
}

// Connect establishes the device connection.
//
// It is idempotent: if a connection exists or an attempt is already
// in flight, the call logs and returns without starting another. The
// attempt itself runs asynchronously; subscribe to the event bus or
// poll IsConnected for the outcome.
func (s *Session) Connect() {
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	if s.connected && s.client != nil {
		s.mu.Unlock()
		s.logDebug("already connected")
		return
	}
	if s.connecting {
		s.mu.Unlock()
		s.logDebug("connect already in progress")
		return
	}
	s.connecting = true
	ctx, cancel := context.WithCancel(s.ctx)
	s.connectCancel = cancel
	tv := *s.tv.Clone()
	s.mu.Unlock()

	s.logDebug("connecting", "address", tv.Address)
	s.emit(KindConnecting, "")

	s.wg.Add(1)
	go s.connectSetup(ctx, tv)
}

// connectSetup runs one connect attempt: build a client, probe it
// for liveness, then bring up polling and the one-time source
// refreshes. Cancellation is a clean abort, not an error.
func (s *Session) connectSetup(ctx context.Context, tv device.TV) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		s.connecting = false
		s.connectCancel = nil
		s.mu.Unlock()
	}()

	client := s.newClient(tv)

	on, err := client.GetPowerState(ctx)
	if ctx.Err() != nil {
		s.logDebug("connect cancelled")
		return
	}
	if err != nil || !on {
		if err != nil {
			s.logError("could not connect", err)
		} else {
			s.logDebug("device is not alive")
		}
		off := device.PowerStateOff
		s.emitUpdate(Update{State: &off})
		s.Disconnect(true)
		return
	}

	s.mu.Lock()
	s.client = client
	s.connected = true
	s.isOn = true
	s.mu.Unlock()

	s.logDebug("device is alive")
	onState := device.PowerStateOn
	s.emitUpdate(Update{State: &onState})
	s.emit(KindConnected, "")

	select {
	case <-ctx.Done():
		return
	case <-time.After(s.timing.SettleDelay):
	}

	s.startPolling()
	s.refreshInputs(ctx)
	s.refreshApps(ctx)
}

// Disconnect tears the connection down.
//
// If continuePolling is false, the poll loop is stopped first;
// otherwise it keeps running and drives reconnect attempts. Any
// in-flight connect attempt is cancelled. Safe to call when already
// disconnected.
func (s *Session) Disconnect(continuePolling bool) {
	s.mu.Lock()
	if !continuePolling && s.pollCancel != nil {
		s.pollCancel()
		s.pollCancel = nil
		s.logDebug("polling stopped")
	}
	if s.connectCancel != nil {
		s.connectCancel()
		s.connectCancel = nil
	}
	s.client = nil
	s.connected = false
	s.mu.Unlock()

	s.logDebug("disconnected")
	s.emit(KindDisconnected, "")
}

// CheckConnectionAndReconnect triggers a best-effort reconnect when
// no live connection exists. Reconnection is asynchronous; callers
// that need the result must re-check IsConnected afterwards.
func (s *Session) CheckConnectionAndReconnect() {
	if s.IsConnected() {
		return
	}
	s.logDebug("connection is not alive, reconnecting")
	s.Connect()
}

// Close releases the session: stops polling, cancels in-flight work
// and waits for background tasks to finish.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.ctxCancel()
		s.Disconnect(false)
		s.wg.Wait()
	})
}

// startPolling launches the poll loop if it is not already running.
// At most one poll task exists per session.
func (s *Session) startPolling() {
	s.mu.Lock()
	if s.pollCancel != nil || s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.pollCancel = cancel
	s.mu.Unlock()

	s.logDebug("polling started")
	s.wg.Add(1)
	go s.pollLoop(ctx)
}

// pollLoop periodically re-samples device state until cancelled.
// Errors in one iteration are logged and swallowed; the loop never
// terminates on a transient device error.
func (s *Session) pollLoop(ctx context.Context) {
	defer s.wg.Done()

	select {
	case <-ctx.Done():
		return
	case <-time.After(s.timing.PollInitialDelay):
	}

	for {
		s.pollOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.timing.PollInterval):
		}
	}
}

// pollOnce runs one poll iteration: sample power state and, while
// on, the active input and app. When disconnected it kicks off a
// best-effort reconnect instead.
func (s *Session) pollOnce(ctx context.Context) {
	s.mu.Lock()
	client := s.client
	connected := s.connected
	wasOn := s.isOn
	s.mu.Unlock()

	// Disconnect(false) cancels this context under the same lock that
	// clears the client. A cancelled iteration must not reconnect on
	// its way out; a stopped loop restarts only via Connect.
	if ctx.Err() != nil {
		return
	}

	if client == nil || !connected {
		s.Connect()
		return
	}

	on, err := client.GetPowerState(ctx)
	if err != nil {
		s.logWarn("poll: power state failed", "error", err)
		return
	}

	if on != wasOn {
		s.mu.Lock()
		s.isOn = on
		s.mu.Unlock()
		state := device.PowerStateOff
		if on {
			state = device.PowerStateOn
		}
		s.emitUpdate(Update{State: &state})
	}

	if on {
		s.refreshCurrentInput(ctx)
		s.refreshCurrentApp(ctx)
	}
}

// refreshInputs performs the one-time input list refresh after connect.
func (s *Session) refreshInputs(ctx context.Context) {
	s.mu.Lock()
	client := s.client
	connected := s.connected
	s.mu.Unlock()
	if client == nil || !connected {
		return
	}

	inputs, err := client.GetInputs(ctx)
	if err != nil {
		s.logWarn("input list refresh failed", "error", err)
		return
	}
	if len(inputs) == 0 {
		return
	}

	s.mu.Lock()
	s.inputs = inputs
	list := s.sourceListLocked()
	s.mu.Unlock()

	s.emitUpdate(Update{SourceList: list})
}

// refreshApps performs the one-time app list refresh after connect.
func (s *Session) refreshApps(ctx context.Context) {
	s.mu.Lock()
	client := s.client
	connected := s.connected
	s.mu.Unlock()
	if client == nil || !connected {
		return
	}

	apps, err := client.GetApps(ctx)
	if err != nil {
		s.logWarn("app list refresh failed", "error", err)
		return
	}
	if len(apps) == 0 {
		return
	}

	s.mu.Lock()
	s.apps = apps
	list := s.sourceListLocked()
	s.mu.Unlock()

	s.emitUpdate(Update{SourceList: list})
}

// refreshCurrentInput samples the active input and updates the source.
func (s *Session) refreshCurrentInput(ctx context.Context) {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()
	if client == nil {
		return
	}

	name, err := client.GetCurrentInput(ctx)
	if err != nil {
		s.logWarn("current input refresh failed", "error", err)
		return
	}
	if name == "" {
		return
	}

	s.setSource(name)
}

// refreshCurrentApp samples the running app and updates the source.
// Sentinel "unknown" values never override a previously known source.
func (s *Session) refreshCurrentApp(ctx context.Context) {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()
	if client == nil {
		return
	}

	name, err := client.GetCurrentApp(ctx)
	if err != nil {
		s.logWarn("current app refresh failed", "error", err)
		return
	}
	if name == "" || name == smartcast.AppUnknown || name == smartcast.AppNotRunning {
		return
	}

	s.setSource(name)
}

// setSource records a new active source and emits the change.
func (s *Session) setSource(name string) {
	s.mu.Lock()
	s.source = name
	s.mu.Unlock()

	s.emitUpdate(Update{Source: &name})
}

// TogglePower handles a power request. A nil power means toggle.
//
// The transition table:
//   - Power-off lockout active: any call overrides the lockout,
//     issues power-on and starts the wake sequence.
//   - Power-on window active: no-op, avoiding duplicate wake loops.
//   - Target ON: already on and connected emits the current state;
//     otherwise a power-on deadline is set and the wake sequence
//     starts, with the view optimistically set to ON. The poll loop
//     or the wake sequence corrects it if the set fails to wake.
//   - Target OFF: the discrete power-off key is pressed when
//     connected, and the power-off lockout begins.
func (s *Session) TogglePower(ctx context.Context, power *bool) {
	now := time.Now()

	s.mu.Lock()
	if s.powerOffInProgressLocked(now) {
		client := s.client
		s.endOfPowerOff = time.Time{}
		s.isOn = true
		s.mu.Unlock()

		s.logDebug("power-off in progress, overriding with power-on")
		if client != nil {
			if err := client.PowerOn(ctx); err != nil {
				s.logWarn("power-on override failed", "error", err)
			}
		}
		s.startPowerOn()
		on := device.PowerStateOn
		s.emitUpdate(Update{State: &on})
		return
	}

	if s.powerOnInProgressLocked(now) {
		s.mu.Unlock()
		s.logDebug("power-on in progress, ignoring power command")
		return
	}

	target := !s.isOn
	if power != nil {
		target = *power
	}

	if target {
		if s.client != nil && s.connected && s.isOn {
			s.mu.Unlock()
			on := device.PowerStateOn
			s.emitUpdate(Update{State: &on})
			return
		}
		s.endOfPowerOn = now.Add(s.timing.PowerOnWindow)
		s.isOn = true
		s.mu.Unlock()

		s.startPowerOn()
		on := device.PowerStateOn
		s.emitUpdate(Update{State: &on})
		return
	}

	client := s.client
	connected := s.connected
	s.endOfPowerOff = now.Add(s.timing.PowerOffWindow)
	s.isOn = false
	s.mu.Unlock()

	if connected && client != nil {
		if err := client.PowerOff(ctx); err != nil {
			s.logError("power-off failed", err)
		}
	}
	off := device.PowerStateOff
	s.emitUpdate(Update{State: &off})
}

// startPowerOn launches the asynchronous power-on sequence.
func (s *Session) startPowerOn() {
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	s.mu.Unlock()

	s.wg.Add(1)
	go s.powerOnSequence(ctx)
}

// powerOnSequence tries the direct power-on call first, then falls
// back to wake-on-LAN packets. If the set never reports on, the
// optimistic ON set by TogglePower is corrected to OFF at the end.
func (s *Session) powerOnSequence(ctx context.Context) {
	defer s.wg.Done()

	s.mu.Lock()
	client := s.client
	tv := *s.tv.Clone()
	s.mu.Unlock()

	if client != nil {
		if err := client.PowerOn(ctx); err == nil {
			s.mu.Lock()
			s.isOn = true
			s.mu.Unlock()
			on := device.PowerStateOn
			s.emitUpdate(Update{State: &on})
			return
		} else if ctx.Err() == nil {
			s.logWarn("could not power on via api, falling back to wake packets", "error", err)
		}
	}

	if tv.CanWake() {
		for i := 0; i < s.timing.WakeAttempts; i++ {
			if ctx.Err() != nil {
				return
			}
			s.logDebug("sending magic packet", "attempt", i)
			s.sendWakePackets(tv)

			select {
			case <-ctx.Done():
				return
			case <-time.After(s.timing.WakeInterval):
			}

			s.mu.Lock()
			client = s.client
			s.mu.Unlock()
			if client != nil {
				if on, err := client.GetPowerState(ctx); err == nil && on {
					s.mu.Lock()
					s.isOn = true
					s.mu.Unlock()
					break
				}
			}

			s.CheckConnectionAndReconnect()

			if s.IsOn() && s.IsConnected() {
				break
			}
		}
	}

	if s.isOnAndConfirmed() {
		on := device.PowerStateOn
		s.emitUpdate(Update{State: &on})
		return
	}

	s.logWarn("unable to wake device")
	s.mu.Lock()
	s.isOn = false
	s.mu.Unlock()
	off := device.PowerStateOff
	s.emitUpdate(Update{State: &off})
}

// isOnAndConfirmed reports whether the power-on sequence confirmed
// the set is actually on, as opposed to the optimistic view.
func (s *Session) isOnAndConfirmed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOn && s.connected && s.client != nil
}

// sendWakePackets fires magic packets at every configured MAC.
// Failures are logged only.
func (s *Session) sendWakePackets(tv device.TV) {
	for _, mac := range []string{tv.MACAddress, tv.MACAddress2} {
		if mac == "" {
			continue
		}
		if err := s.wake(mac, tv.WOLBroadcast, tv.WOLPort); err != nil {
			s.logError("wake packet failed", err)
		}
	}
}

// SendKey maps an abstract remote key and presses it on the device.
//
// Unmapped keys are logged and dropped; device failures are logged
// and swallowed. The caller always sees success.
func (s *Session) SendKey(ctx context.Context, key string) {
	s.CheckConnectionAndReconnect()

	code, ok := MapKey(key)
	if !ok {
		s.logWarn("no mapping for key", "key", key)
		return
	}

	s.mu.Lock()
	client := s.client
	connected := s.connected
	s.mu.Unlock()
	if client == nil || !connected {
		s.logError("cannot send key, not connected", fmt.Errorf("key: %s", key))
		return
	}

	if err := client.SendKey(ctx, code); err != nil {
		s.logError("send key failed", err)
	}
}

// LaunchSource switches to a physical input or launches an app by
// name. HDMI-style names select inputs; anything else is looked up
// in the app catalogue. The active source updates on success only.
// A no-op while a power-off lockout is active.
func (s *Session) LaunchSource(ctx context.Context, name string) {
	if s.PowerOffInProgress() {
		s.logDebug("power-off in progress, not launching source", "source", name)
		return
	}

	s.CheckConnectionAndReconnect()

	s.mu.Lock()
	client := s.client
	connected := s.connected
	knownApp := slices.Contains(s.apps, name)
	s.mu.Unlock()
	if client == nil || !connected {
		s.logError("cannot launch source, not connected", fmt.Errorf("source: %s", name))
		return
	}

	switch {
	case smartcast.IsHDMIInput(name):
		if err := client.SetInput(ctx, name); err != nil {
			s.logError("set input failed", err)
			return
		}
		s.setSource(name)
	case knownApp:
		if err := client.LaunchApp(ctx, name); err != nil {
			s.logError("launch app failed", err)
			return
		}
		s.setSource(name)
	default:
		s.logWarn("unknown source", "source", name)
	}
}

// DeviceInfo queries model and firmware details. Unlike control
// operations this surfaces the error: callers are diagnostic paths
// that want to know why the query failed.
func (s *Session) DeviceInfo(ctx context.Context) (*smartcast.DeviceInfo, error) {
	s.mu.Lock()
	client := s.client
	connected := s.connected
	s.mu.Unlock()
	if client == nil || !connected {
		return nil, fmt.Errorf("not connected")
	}

	return client.GetDeviceInfo(ctx)
}

// emit publishes a lifecycle event.
func (s *Session) emit(kind Kind, message string) {
	if s.bus == nil {
		return
	}
	s.bus.Emit(Event{Kind: kind, DeviceID: s.id, Message: message})
}

// emitUpdate runs a candidate update through the reconciler and
// publishes only the fields that actually changed.
func (s *Session) emitUpdate(candidate Update) {
	s.mu.Lock()
	diff, changed := s.recon.diff(candidate)
	s.mu.Unlock()

	if !changed || s.bus == nil {
		return
	}
	s.bus.Emit(Event{Kind: KindUpdate, DeviceID: s.id, Update: &diff})
}

// SetLogger sets the logger for session operations.
func (s *Session) SetLogger(logger Logger) {
	s.loggerMu.Lock()
	defer s.loggerMu.Unlock()
	s.logger = logger
}

// logDebug logs a debug message if logger is set.
func (s *Session) logDebug(msg string, keysAndValues ...any) {
	s.loggerMu.RLock()
	logger := s.logger
	s.loggerMu.RUnlock()

	if logger != nil {
		logger.Debug(msg, append([]any{"device_id", s.id}, keysAndValues...)...)
	}
}

// logWarn logs a warning message if logger is set.
func (s *Session) logWarn(msg string, keysAndValues ...any) {
	s.loggerMu.RLock()
	logger := s.logger
	s.loggerMu.RUnlock()

	if logger != nil {
		logger.Warn(msg, append([]any{"device_id", s.id}, keysAndValues...)...)
	}
}

// logError logs an error message if logger is set.
func (s *Session) logError(msg string, err error) {
	s.loggerMu.RLock()
	logger := s.logger
	s.loggerMu.RUnlock()

	if logger != nil {
		logger.Error(msg, "device_id", s.id, "error", err)
	}
}
