package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/autoplay/internal/script"
)

func newComposeCmd() *cobra.Command {
	var (
		timeout        time.Duration
		hold           time.Duration
		maxTransitions int
	)

	cmd := &cobra.Command{
		Use:   "compose SCRIPT OUT",
		Short: "Build a session file from a Lua script",
		Long: `Run a Lua script and write the transitions it schedules as a session.

The script can call press(key, at), release(key, at), tap(key, at[, hold])
and text(str, at[, interval]). Times are in seconds.`,
		Example: `  autoplay compose login.lua login.gsi`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := script.New(
				script.WithTimeout(timeout),
				script.WithHold(hold),
				script.WithMaxTransitions(maxTransitions),
			)
			s, err := c.ComposeFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := s.Save(args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d entries (%s) to %s\n", s.Len(), s.Duration(), args[1])
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", script.DefaultTimeout, "Maximum script run time")
	cmd.Flags().DurationVar(&hold, "hold", script.DefaultHold, "Default hold for tap and text")
	cmd.Flags().IntVar(&maxTransitions, "max-transitions", script.DefaultMaxTransitions, "Maximum transitions a script may schedule")
	return cmd
}
