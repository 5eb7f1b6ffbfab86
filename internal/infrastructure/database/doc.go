// Package database manages the SQLite device store.
//
// The bridge persists configured TVs (addresses, pairing tokens,
// wake-on-LAN settings) and their last known state so a restart does
// not require re-pairing. The schema is small enough to be applied
// inline and idempotently on every startup.
package database
