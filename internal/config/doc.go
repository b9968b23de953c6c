// Package config handles loading and parsing rally configuration files.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/rally/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - API endpoint: http://127.0.0.1:3000
//   - Event socket: the API host with a ws/wss scheme and path /socket
//   - Data directory: ~/.local/share/rally (log file and local store)
//   - Reconnect base delay: 2s
//   - Theme: Nightfox
//
// Coordinates have no default. Without them the client runs without a
// location, as it would when the device refuses to share one.
//
// # TOML Format
//
//	api_url = "https://rally.example.com"
//	socket_url = "wss://rally.example.com/socket"
//	data_dir = "~/.local/share/rally"
//	latitude = 40.4168
//	longitude = -3.7038
//	reconnect_seconds = 2
//	theme = "Slate"
//
// # Validation
//
// latitude and longitude must be given together and within range;
// reconnect_seconds must not be negative. Invalid TOML is an error, unlike
// a missing file.
package config
