package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codemotion/internal/arcmotion"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <fixture.mp>",
	Short: "Print one IR fixture in human-readable form",
	Args:  cobra.ExactArgs(1),
	RunE:  dumpFixture,
}

func dumpFixture(cmd *cobra.Command, args []string) error {
	f, err := loadFixtureFunction(args[0])
	if err != nil {
		return err
	}
	if err := arcmotion.Dump(cmd.OutOrStdout(), f); err != nil {
		return fmt.Errorf("dump %s: %w", args[0], err)
	}
	return nil
}
