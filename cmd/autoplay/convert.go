package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/autoplay/internal/autoplay"
)

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump FILE",
		Short: "Print a session file as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := autoplay.ReadFile(args[0])
			if err != nil {
				return err
			}
			return s.EncodeText(cmd.OutOrStdout())
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "import YAML OUT",
		Short:   "Write a session file from its YAML form",
		Example: `  autoplay dump demo.gsi > demo.yaml && autoplay import demo.yaml edited.gsi`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			s, err := autoplay.DecodeText(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := s.Save(args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d entries to %s\n", s.Len(), args[1])
			return nil
		},
	}
}
