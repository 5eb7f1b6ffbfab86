// Package tsdb records TV state history in InfluxDB.
//
// The recorder is optional: when disabled in configuration the bridge
// runs without it. Writes are batched and non-blocking so a slow or
// unreachable InfluxDB never delays session operations.
package tsdb
