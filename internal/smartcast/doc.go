// Package smartcast implements the Vizio SmartCast device API.
//
// SmartCast TVs expose an HTTPS JSON API on port 7345 (9000 on older
// firmware) with a self-signed certificate. Authenticated calls carry
// a pairing token in the AUTH header; the token is obtained through
// the PIN pairing flow implemented in pairing.go.
//
// The package provides:
//   - Client, the request/response surface the session layer drives
//   - Named remote key codes for the /key_command/ endpoint
//   - A catalogue of launchable apps and current-app resolution
//   - PIN pairing (start, submit, cancel)
//   - SSDP discovery of SmartCast devices on the local network
//
// Every operation takes a context and returns an error; the session
// layer decides which failures are fatal and which degrade to a
// logged no-op.
package smartcast
