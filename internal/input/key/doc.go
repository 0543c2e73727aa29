// Package key provides physical key codes and the live keyboard state
// shared between a host and the autoplay engine.
//
// This package defines the fundamental types for representing keyboard input:
//
//   - Key: Identifies a physical key. Codes are stable and persisted.
//   - Event: A single raw key-down or key-up signal from the host.
//   - State: The pressed set plus the keys that changed during the current tick.
//
// # Key Names
//
// Keys parse case-insensitively from their canonical names ("A", "Digit1",
// "F12", "Escape"), from the same names prefixed with "Key" ("KeyA"), from
// single characters ("a", "1", "/") and from common aliases ("esc", "ctrl").
//
// # Ticks
//
// A host folds raw events into a State as they arrive, hands the State to the
// engine once per tick, then calls EndTick. JustPressed and JustReleased only
// describe the tick in progress.
package key
