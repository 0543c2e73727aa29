package main

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/autoplay/internal/autoplay"
	"github.com/dshills/autoplay/internal/input/key"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Summarize a session file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := autoplay.ReadFile(args[0])
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), args[0], summarize(s))
			return nil
		},
	}
}

// keyUse counts the transitions of one key.
type keyUse struct {
	Key      key.Key
	Presses  int
	Releases int
}

// summary describes a session.
type summary struct {
	Entries     int
	Transitions int
	Duration    time.Duration
	Keys        []keyUse
	// Held lists keys still down when the session ends.
	Held []key.Key
}

func summarize(s *autoplay.Session) summary {
	out := summary{
		Entries:     s.Len(),
		Transitions: s.TransitionCount(),
		Duration:    s.Duration(),
	}

	uses := make(map[key.Key]*keyUse)
	down := make(map[key.Key]bool)
	for _, e := range s.Entries() {
		for _, t := range e.Transitions {
			u := uses[t.Key]
			if u == nil {
				u = &keyUse{Key: t.Key}
				uses[t.Key] = u
			}
			if t.Edge == autoplay.EdgePress {
				u.Presses++
				down[t.Key] = true
			} else {
				u.Releases++
				delete(down, t.Key)
			}
		}
	}

	for _, u := range uses {
		out.Keys = append(out.Keys, *u)
	}
	slices.SortFunc(out.Keys, func(a, b keyUse) int { return int(a.Key) - int(b.Key) })
	for k := range down {
		out.Held = append(out.Held, k)
	}
	slices.Sort(out.Held)
	return out
}

func printSummary(w io.Writer, path string, sum summary) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow, color.Bold)

	cyan.Fprintln(w, "SESSION")
	fmt.Fprintf(w, "File:        %s\n", path)
	fmt.Fprintf(w, "Entries:     %d\n", sum.Entries)
	fmt.Fprintf(w, "Transitions: %d\n", sum.Transitions)
	fmt.Fprintf(w, "Duration:    %s\n", sum.Duration)
	fmt.Fprintln(w)

	cyan.Fprintln(w, "KEYS")
	if len(sum.Keys) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, u := range sum.Keys {
		green.Fprintf(w, "  %-14s", u.Key)
		fmt.Fprintf(w, " %d press, %d release\n", u.Presses, u.Releases)
	}

	if len(sum.Held) > 0 {
		fmt.Fprintln(w)
		yellow.Fprint(w, "Still held at end: ")
		for i, k := range sum.Held {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			fmt.Fprint(w, k)
		}
		fmt.Fprintln(w)
	}
}
