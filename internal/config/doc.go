// Package config provides the configuration for the autoplay engine and its
// hosts.
//
// Configuration is built in three layers, each overriding the one before:
//
//  1. Built-in defaults (Default)
//  2. A TOML or YAML file, chosen by extension
//  3. AUTOPLAY_* environment variables
//
// # Configuration Files
//
//	# autoplay.toml
//	[bindings]
//	toggle_record = "F12"
//	toggle_play = "F11"
//	pause = "F10"
//
//	[session]
//	dir = "sessions"
//	play_path = ""
//	auto_save = true
//	catch_up = "one"   # or "drain"
//
//	[loop]
//	tick_rate = 60
//	speed = 1.0
//
// Unknown keys are rejected.
//
// # Environment
//
// Every setting has a variable named after its section and key, for example
// AUTOPLAY_LOG_LEVEL, AUTOPLAY_SESSION_DIR or AUTOPLAY_BINDINGS_TOGGLE_PLAY.
//
// # Live Reload
//
// Watch re-reads the file whenever it changes and hands the result to a
// callback. Invalid edits are reported and the caller keeps its previous
// configuration.
//
// # Error Handling
//
//   - ErrFileNotFound: the named configuration file doesn't exist
//   - ErrValidationFailed: one or more settings are invalid; the individual
//     *ValidationError values are joined underneath and ValidationErrors
//     lists them
//   - *ParseError: the file could not be decoded
package config
