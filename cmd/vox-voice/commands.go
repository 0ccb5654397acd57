package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/vox-portal/internal/voice"
)

func newCommandsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the voice command patterns in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns := voice.NewDefaultRouter(opts.logger(cmd)).Patterns()
			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				return json.NewEncoder(out).Encode(patterns)
			}
			for _, p := range patterns {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}
}
