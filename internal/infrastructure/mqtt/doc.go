// Package mqtt wraps the paho MQTT client for the bridge's hub transport.
//
// The bridge is the device side of the Gray Logic bridge interface: it
// subscribes to command topics, publishes state, ack, event and health
// messages, and registers a Last Will on the health topic so the hub
// detects unclean shutdowns.
//
// Connection loss is handled by paho's auto-reconnect; tracked
// subscriptions are restored on every reconnect.
package mqtt
