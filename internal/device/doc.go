// Package device manages SmartCast TV configuration records.
//
// A TV record holds everything the bridge needs to reach a television:
// its network address, the auth token obtained during PIN pairing, and
// wake-on-LAN details for powering on from deep standby.
//
// The package provides:
//   - TV and StoredState types matching the SQLite schema
//   - Repository interface with a SQLite implementation
//   - Registry, a cached read layer used by the session and API layers
//   - Validation of records at the persistence boundary
//
// Last known power state and source are persisted per TV so the bridge
// can present a sensible view immediately after restart, before the
// first poll of each television completes.
package device
