// Package bridge connects the TV session layer to the Gray Logic MQTT bus.
//
// The bridge subscribes to per-device command topics, dispatches commands
// to the session manager, and publishes acknowledgments, retained state
// snapshots, lifecycle events, and periodic health reports. State changes
// observed on the session event bus are also persisted to the device store
// and recorded in the time-series database when one is configured.
package bridge
