// Package config loads runtime configuration for the pdfdesk CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the pdfdesk HTTP API
//	-k string   directory holding the saved session token
//	-w int      per-request timeout (seconds)
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "30s"
// or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8000",
//	  "token_dir": ".pdfdesk",
//	  "request_timeout": "30s"
//	}
package config
