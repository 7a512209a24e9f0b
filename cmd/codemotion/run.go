package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codemotion/internal/arcmotion"
	"codemotion/internal/arcmotion/fixture"
	"codemotion/cmd/codemotion/cliconfig"
	"codemotion/cmd/codemotion/statsprint"
)

var runCmd = &cobra.Command{
	Use:   "run <fixture.mp>",
	Short: "Run the code-motion pass over one IR fixture",
	Args:  cobra.ExactArgs(1),
	RunE:  runCodeMotion,
}

func init() {
	runCmd.Flags().Bool("hoist-releases", false, "also hoist releases back to predecessors / into switch arms")
	runCmd.Flags().Bool("disable-rc-code-motion", false, "skip local retain sinking and release hoisting to predecessors")
}

func runCodeMotion(cmd *cobra.Command, args []string) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	configPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := cliconfig.LoadOrDefault(configPath, ".")
	if err != nil {
		return err
	}

	hoist, _ := cmd.Flags().GetBool("hoist-releases")
	disable, _ := cmd.Flags().GetBool("disable-rc-code-motion")
	if cmd.Flags().Changed("hoist-releases") {
		cfg.Pass.HoistReleases = hoist
	}
	if cmd.Flags().Changed("disable-rc-code-motion") {
		cfg.Pass.DisableSILRRCodeMotion = disable
	}

	f, err := loadFixtureFunction(args[0])
	if err != nil {
		return err
	}

	stats, changed := arcmotion.Run(f, arcmotion.Options{
		HoistReleases:          cfg.Pass.HoistReleases,
		DisableSILRRCodeMotion: cfg.Pass.DisableSILRRCodeMotion,
	})

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: changed=%v\n", f.Name, changed)
		statsprint.Print(cmd.OutOrStdout(), stats, resolveColor(cmd, os.Stdout))
	}
	return nil
}

// loadFixtureFunction decodes a fixture.Function from path and
// reconstructs it without a concrete type table, so every value of the
// returned function has a nil Type.
func loadFixtureFunction(path string) (*arcmotion.Function, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ff, err := fixture.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return fixture.ToFunction(ff, nil), nil
}
