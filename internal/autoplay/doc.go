// Package autoplay records keyboard input sessions and plays them back with
// their original timing.
//
// The package is organized around a few pieces:
//
//   - Session: a FIFO of Entry values ordered by offset from the start of a
//     run. Each Entry holds the key transitions observed in one tick.
//   - Recorder: appends an Entry for every tick in which keys changed.
//   - Player: applies entries back onto the host input once they are due.
//   - Controller: the Stopped/Recording/Playing state machine that decides
//     which of the two runs.
//   - Engine: wires the above to a clock, toggle keys and file commands.
//     Hosts call Engine.Tick once per frame.
//
// # Session Files
//
// Sessions are stored in a small little-endian binary format, conventionally
// with the ".gsi" extension:
//
//	"GSIS" | u16 version | u32 entry count
//	entry:      u64 seconds | u32 nanoseconds | u32 transition count
//	transition: u8 tag (0 press, 1 release) | u16 key code
//
// Save and Load return *Error values. Use errors.Is with the Err* sentinels
// or with fs.ErrNotExist to inspect the cause.
//
// # Threading
//
// Nothing in this package is safe for concurrent use. The engine is driven
// from the host's tick goroutine only.
package autoplay
