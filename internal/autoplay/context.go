package autoplay

import "time"

// Context is the state shared by the Recorder and the Player: the session
// queue and the time the current run started.
type Context struct {
	Session   *Session
	StartTime time.Duration
}

// NewContext creates a context around an empty session.
func NewContext() *Context {
	return &Context{Session: &Session{}}
}

// Since returns the run-relative offset of now.
func (c *Context) Since(now time.Duration) time.Duration {
	return now - c.StartTime
}
