// Package app provides the orchestration layer for the rally client.
//
// # Overview
//
// This package wires together configuration, the local store, the API
// client, the event channel, the state core and the UI. It is the
// composition root where every dependency is built and connected.
//
// # Architecture
//
//  1. Load configuration from ~/.config/rally/config.toml
//  2. Send the standard logger to <data_dir>/rally.log (and stderr when headless)
//  3. Open the local key-value store; a corrupt file is replaced by an empty one
//  4. Build the HTTP client and the websocket event channel, both reading the
//     session token from the store
//  5. Build the core and start it (locate, load user and matches, connect)
//  6. Launch the background matches refresher
//  7. Run the TUI, or block headless until the context is cancelled
//
// # Components
//
//   - app.go: Run, StaticLocator and store/log setup
//   - poller.go: background goroutine reloading the nearby matches
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()          Read rally config
//	       ├─────> kvstore.Open()         Token and read markers
//	       ├─────> remote.NewClient()     REST client
//	       ├─────> events.NewWSChannel()  Event socket
//	       ├─────> core.New() / Start()   State core and bootstrap
//	       ├─────> StartRefresher()       Periodic match reload
//	       └─────> ui.Run()               Start TUI (blocks)
//
// Realtime updates do not go through this package: the event channel calls
// the core directly, and the UI polls the store on its own tick.
//
// # Location
//
// StaticLocator reports the coordinates from the config file. Without them
// Locate fails, the core skips the user and matches fetch, and the client
// still connects to the event channel.
package app
