package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-vizio/internal/infrastructure/mqtt"
)

// defaultHealthInterval is used when no interval is configured.
const defaultHealthInterval = 30 * time.Second

// Health status values.
const (
	HealthStatusOnline   = "online"
	HealthStatusStopping = "stopping"

	// HealthStatusOffline is published by the broker as the LWT when the
	// bridge disappears without a clean shutdown.
	HealthStatusOffline = "offline"
)

// HealthPublisher is the broker surface health reporting needs.
type HealthPublisher interface {
	PublishRetained(topic string, payload []byte) error
	IsConnected() bool
}

// HealthReporter periodically publishes a retained health message so the
// hub can monitor bridge liveness. The same topic carries the broker LWT,
// so a crashed bridge is reported by the broker itself.
type HealthReporter struct {
	bridgeID  string
	version   string
	interval  time.Duration
	publisher HealthPublisher
	counts    func() (total, connected int)
	topics    mqtt.Topics

	startTime time.Time
	done      chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once

	logger   Logger
	loggerMu sync.RWMutex
}

// HealthReporterOptions configures a HealthReporter.
type HealthReporterOptions struct {
	BridgeID  string
	Version   string
	Interval  time.Duration
	Publisher HealthPublisher

	// Counts reports (total, connected) session counts at publish time.
	Counts func() (total, connected int)

	Logger Logger
}

// NewHealthReporter creates a reporter. A zero interval falls back to
// the 30 second default.
func NewHealthReporter(opts HealthReporterOptions) *HealthReporter {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultHealthInterval
	}
	return &HealthReporter{
		bridgeID:  opts.BridgeID,
		version:   opts.Version,
		interval:  interval,
		publisher: opts.Publisher,
		counts:    opts.Counts,
		logger:    opts.Logger,
	}
}

// Start begins periodic publishing. An immediate report is published
// before the first tick so the hub sees the bridge as soon as it is up.
func (h *HealthReporter) Start(ctx context.Context) {
	h.startTime = time.Now()
	h.done = make(chan struct{})

	h.publish(HealthStatusOnline)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.done:
				return
			case <-ticker.C:
				h.publish(HealthStatusOnline)
			}
		}
	}()
}

// Stop halts periodic publishing and sends a final stopping report.
func (h *HealthReporter) Stop() {
	h.stopOnce.Do(func() {
		if h.done != nil {
			close(h.done)
		}
		h.wg.Wait()
		h.publish(HealthStatusStopping)
	})
}

func (h *HealthReporter) publish(status string) {
	if !h.publisher.IsConnected() {
		h.logWarn("skipping health publish, broker disconnected", "bridge_id", h.bridgeID)
		return
	}

	total, connected := 0, 0
	if h.counts != nil {
		total, connected = h.counts()
	}

	msg := HealthMessage{
		BridgeID:       h.bridgeID,
		Timestamp:      time.Now().UTC(),
		Status:         status,
		Version:        h.version,
		UptimeSeconds:  int64(time.Since(h.startTime).Seconds()),
		DeviceCount:    total,
		ConnectedCount: connected,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		h.logError("marshalling health message", err)
		return
	}
	if err := h.publisher.PublishRetained(h.topics.Health(), payload); err != nil {
		h.logError("publishing health message", err)
	}
}

// SetLogger sets the logger for health reporting.
func (h *HealthReporter) SetLogger(logger Logger) {
	h.loggerMu.Lock()
	defer h.loggerMu.Unlock()
	h.logger = logger
}

func (h *HealthReporter) currentLogger() Logger {
	h.loggerMu.RLock()
	defer h.loggerMu.RUnlock()
	return h.logger
}

func (h *HealthReporter) logWarn(msg string, keysAndValues ...any) {
	if l := h.currentLogger(); l != nil {
		l.Warn(msg, keysAndValues...)
	}
}

func (h *HealthReporter) logError(msg string, err error) {
	if l := h.currentLogger(); l != nil {
		l.Error(msg, "error", err.Error())
	}
}
