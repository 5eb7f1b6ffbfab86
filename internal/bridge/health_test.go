package bridge

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func decodeHealth(t *testing.T, p publishedMessage) HealthMessage {
	t.Helper()
	var msg HealthMessage
	if err := json.Unmarshal(p.payload, &msg); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	return msg
}

func TestHealthReporterPublishesOnStartAndStop(t *testing.T) {
	client := newMockMQTT()
	h := NewHealthReporter(HealthReporterOptions{
		BridgeID:  "test-bridge",
		Version:   "1.2.3",
		Interval:  time.Minute,
		Publisher: client,
		Counts:    func() (int, int) { return 3, 2 },
	})

	h.Start(context.Background())
	h.Stop()

	reports := client.onTopic("health/vizio")
	if len(reports) != 2 {
		t.Fatalf("health publish count = %d, want 2", len(reports))
	}
	if !reports[0].retained {
		t.Error("health message not retained")
	}

	first := decodeHealth(t, reports[0])
	if first.Status != HealthStatusOnline || first.BridgeID != "test-bridge" ||
		first.Version != "1.2.3" || first.DeviceCount != 3 || first.ConnectedCount != 2 {
		t.Errorf("startup health = %+v", first)
	}

	if last := decodeHealth(t, reports[1]); last.Status != HealthStatusStopping {
		t.Errorf("final health status = %q, want stopping", last.Status)
	}
}

func TestHealthReporterSkipsWhenDisconnected(t *testing.T) {
	client := newMockMQTT()
	client.connected = false

	h := NewHealthReporter(HealthReporterOptions{
		BridgeID:  "test-bridge",
		Interval:  time.Minute,
		Publisher: client,
	})
	h.Start(context.Background())
	h.Stop()

	if reports := client.onTopic("health"); len(reports) != 0 {
		t.Errorf("health publish count = %d, want 0 while disconnected", len(reports))
	}
}

func TestHealthReporterPeriodicPublish(t *testing.T) {
	client := newMockMQTT()
	h := NewHealthReporter(HealthReporterOptions{
		BridgeID:  "test-bridge",
		Interval:  10 * time.Millisecond,
		Publisher: client,
	})
	h.Start(context.Background())

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(client.onTopic("health")) >= 3 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	h.Stop()

	if got := len(client.onTopic("health")); got < 3 {
		t.Errorf("health publish count = %d, want at least 3", got)
	}
}

func TestHealthReporterDefaultInterval(t *testing.T) {
	h := NewHealthReporter(HealthReporterOptions{Publisher: newMockMQTT()})
	if h.interval != defaultHealthInterval {
		t.Errorf("interval = %v, want %v", h.interval, defaultHealthInterval)
	}
}
