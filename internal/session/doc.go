// Package session owns the connection lifecycle for SmartCast TVs.
//
// Each Session manages one television: establishing and tearing down
// the device connection, polling for state changes, reconciling
// power-transition timing windows, falling back to wake-on-LAN when
// the set is in deep standby, and emitting normalized update events.
//
// The difficult part is coordination. Overlapping connect, disconnect,
// power-on and power-off requests must not race; the poll loop has to
// coexist with on-demand commands; and several independent signals
// (API responses, deadline timers, wake packets) have to be reconciled
// into one consistent view of whether the TV is on.
//
// Power transitions use asymmetric deadline windows. Powering on gets
// a 15 second budget driven by the wake-packet retry loop. Powering
// off holds a 65 second lockout because the panel takes tens of
// seconds to fully shut down and rejects power commands during that
// window. The transitional states are derived from stored deadline
// timestamps rather than kept as a separate enum, so they can never
// fall out of sync with the timestamps they describe.
//
// Commands follow a fire-and-forget philosophy: a failing device call
// degrades to a logged no-op rather than an error to the caller, so
// the hub always sees a responsive remote. Only the initial connect
// probe is fatal to a session.
//
// The Manager aggregates sessions for a fleet of TVs and is the entry
// point used by the MQTT bridge and the HTTP API.
package session
