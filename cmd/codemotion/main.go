package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"codemotion/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "codemotion",
	Short: "ARC code-motion pass over a block-argument SSA IR",
	Long:  `codemotion moves retains, releases, and duplicate tail code across a block-argument SSA IR's control flow graph.`,
}

// main registers subcommands and persistent flags, then executes the
// root command; a non-nil error exits the process with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().String("config", "", "path to codemotion.toml (searched upward from cwd if unset)")
	rootCmd.PersistentFlags().String("trace", "", "trace output path (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace mode (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "ring tracer buffer size")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "periodic heartbeat interval (0 disables)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// resolveColor interprets the --color flag against whether out is a
// terminal.
func resolveColor(cmd *cobra.Command, out *os.File) bool {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(out)
	}
}
