// Package logging provides structured logging built on log/slog.
//
// A single Logger is created at startup from the logging section of the
// configuration and passed down to components. Packages that only need a
// subset of logging declare their own small Logger interface, which this
// package's Logger satisfies.
package logging
