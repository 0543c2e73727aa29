// Package script composes sessions from Lua scripts.
//
// A script schedules key transitions at absolute times in seconds:
//
//	press("ShiftLeft", 0)
//	tap("A", 0.5)            -- press at 0.5s, release 0.1s later
//	local t = text("hello", 1.0, 0.15)
//	release("ShiftLeft", t)
//
// Transitions scheduled for the same time form one session entry, in the
// order they were scheduled. The runtime only exposes the base, table,
// string and math libraries.
package script

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/autoplay/internal/autoplay"
	"github.com/dshills/autoplay/internal/input/key"
)

// Default limits.
const (
	DefaultTimeout        = 5 * time.Second
	DefaultMaxTransitions = 1_000_000
	DefaultHold           = 100 * time.Millisecond
)

// ErrTooManyTransitions is returned when a script schedules more than the
// configured maximum.
var ErrTooManyTransitions = errors.New("script scheduled too many transitions")

// Option configures a Composer.
type Option func(*Composer)

// WithTimeout bounds script execution.
func WithTimeout(d time.Duration) Option {
	return func(c *Composer) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxTransitions bounds the number of scheduled transitions.
func WithMaxTransitions(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.maxTransitions = n
		}
	}
}

// WithHold sets the default hold used by tap and text.
func WithHold(d time.Duration) Option {
	return func(c *Composer) {
		if d > 0 {
			c.hold = d
		}
	}
}

// Composer runs scripts and collects the transitions they schedule.
type Composer struct {
	timeout        time.Duration
	maxTransitions int
	hold           time.Duration
}

// New creates a Composer.
func New(opts ...Option) *Composer {
	c := &Composer{
		timeout:        DefaultTimeout,
		maxTransitions: DefaultMaxTransitions,
		hold:           DefaultHold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// scheduled is one transition with its time and scheduling order.
type scheduled struct {
	at  time.Duration
	seq int
	t   autoplay.Transition
}

// run holds the state of one script execution.
type run struct {
	c      *Composer
	events []scheduled
}

// ComposeFile runs the script at path.
func (c *Composer) ComposeFile(ctx context.Context, path string) (*autoplay.Session, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return c.compose(ctx, path, string(src))
}

// Compose runs src and returns the resulting session.
func (c *Composer) Compose(ctx context.Context, src string) (*autoplay.Session, error) {
	return c.compose(ctx, "<script>", src)
}

func (c *Composer) compose(ctx context.Context, name, src string) (*autoplay.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	L := newState()
	defer L.Close()
	L.SetContext(ctx)

	r := &run{c: c}
	r.install(L)

	fn, err := L.Load(strings.NewReader(src), name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	L.Push(fn)
	if err := r.call(L); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", name, ctxErr)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return r.session(), nil
}

// call runs the loaded chunk with panic recovery.
func (r *run) call(L *lua.LState) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lua panic: %v", rec)
		}
	}()
	return L.PCall(0, lua.MultRet, nil)
}

// newState creates a Lua state with only the safe libraries.
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "module", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

func (r *run) install(L *lua.LState) {
	L.SetGlobal("press", L.NewFunction(r.luaPress))
	L.SetGlobal("release", L.NewFunction(r.luaRelease))
	L.SetGlobal("tap", L.NewFunction(r.luaTap))
	L.SetGlobal("text", L.NewFunction(r.luaText))
}

// press(key, seconds)
func (r *run) luaPress(L *lua.LState) int {
	k := checkKey(L, 1)
	at := checkDuration(L, 2)
	r.schedule(L, at, autoplay.Press(k))
	return 0
}

// release(key, seconds)
func (r *run) luaRelease(L *lua.LState) int {
	k := checkKey(L, 1)
	at := checkDuration(L, 2)
	r.schedule(L, at, autoplay.Release(k))
	return 0
}

// tap(key, seconds [, hold]) returns the release time.
func (r *run) luaTap(L *lua.LState) int {
	k := checkKey(L, 1)
	at := checkDuration(L, 2)
	hold := r.optHold(L, 3)

	r.schedule(L, at, autoplay.Press(k))
	r.schedule(L, at+hold, autoplay.Release(k))
	L.Push(seconds(at + hold))
	return 1
}

// text(str, seconds [, interval]) taps each character and returns the time
// after the last release.
func (r *run) luaText(L *lua.LState) int {
	s := L.CheckString(1)
	at := checkDuration(L, 2)
	interval := r.c.hold * 2
	if L.GetTop() >= 3 {
		interval = checkDuration(L, 3)
	}
	hold := min(r.c.hold, interval)

	for _, ch := range s {
		k, err := key.Parse(string(ch))
		if err != nil {
			L.ArgError(1, err.Error())
		}
		r.schedule(L, at, autoplay.Press(k))
		r.schedule(L, at+hold, autoplay.Release(k))
		at += interval
	}
	L.Push(seconds(at))
	return 1
}

func (r *run) optHold(L *lua.LState, n int) time.Duration {
	if L.GetTop() < n || L.Get(n) == lua.LNil {
		return r.c.hold
	}
	return checkDuration(L, n)
}

func (r *run) schedule(L *lua.LState, at time.Duration, t autoplay.Transition) {
	if len(r.events) >= r.c.maxTransitions {
		L.RaiseError("%s (limit %d)", ErrTooManyTransitions, r.c.maxTransitions)
	}
	r.events = append(r.events, scheduled{at: at, seq: len(r.events), t: t})
}

// session groups the scheduled transitions into entries ordered by time.
func (r *run) session() *autoplay.Session {
	slices.SortStableFunc(r.events, func(a, b scheduled) int {
		if c := cmp.Compare(a.at, b.at); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	s := autoplay.NewSession()
	for i := 0; i < len(r.events); {
		j := i
		var transitions []autoplay.Transition
		for j < len(r.events) && r.events[j].at == r.events[i].at {
			transitions = append(transitions, r.events[j].t)
			j++
		}
		s.PushBack(autoplay.NewEntry(r.events[i].at, transitions...))
		i = j
	}
	return s
}

func checkKey(L *lua.LState, n int) key.Key {
	k, err := key.Parse(L.CheckString(n))
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return k
}

// checkDuration reads a non-negative number of seconds.
func checkDuration(L *lua.LState, n int) time.Duration {
	v := float64(L.CheckNumber(n))
	if math.IsNaN(v) || v < 0 {
		L.ArgError(n, "time must be a non-negative number of seconds")
	}
	if v > float64(math.MaxInt64/int64(time.Second)) {
		L.ArgError(n, "time out of range")
	}
	return time.Duration(math.Round(v * float64(time.Second)))
}

func seconds(d time.Duration) lua.LNumber {
	return lua.LNumber(d.Seconds())
}
