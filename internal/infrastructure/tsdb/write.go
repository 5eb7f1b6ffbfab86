package tsdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePowerState records a TV power transition.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Power is recorded as 1.0 (on) / 0.0 (off) so dashboards can graph
// uptime directly.
//
// Parameters:
//   - deviceID: The TV identifier (e.g., "tv-living")
//   - on: Whether the TV is on
func (c *Client) WritePowerState(deviceID string, on bool) {
	if !c.IsConnected() {
		return
	}

	value := 0.0
	if on {
		value = 1.0
	}

	point := write.NewPoint(
		"tv_power",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"on": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSourceChange records a change of the active input source.
//
// The source name is stored as a field (high cardinality) with the
// device ID as the only tag.
func (c *Client) WriteSourceChange(deviceID string, source string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"tv_source",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"source": source,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteConnectivity records a session connect or disconnect.
func (c *Client) WriteConnectivity(deviceID string, connected bool) {
	if !c.IsConnected() {
		return
	}

	value := 0.0
	if connected {
		value = 1.0
	}

	point := write.NewPoint(
		"tv_connectivity",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"connected": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
