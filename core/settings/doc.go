// Package settings holds the user-editable configuration of the bridge:
// server addresses, API keys, sampling parameters, the system instruction,
// provider visibility and transport timeouts.
//
// Settings are read from a YAML file, overlaid with CHATBRIDGE_* environment
// variables (optionally populated from a .env file), and handed out as
// immutable snapshots through the [Store] interface. A [Watcher] reloads the
// file when it changes so callers can rebuild their connection config and
// controller from the new snapshot.
package settings
