package main

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"codemotion/internal/arcmotion"
)

var benchCmd = &cobra.Command{
	Use:   "bench <fixture.mp>...",
	Short: "Run the code-motion pass over many fixtures in parallel and report timings",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().Int("jobs", 0, "max concurrent fixtures (0 = GOMAXPROCS)")
	benchCmd.Flags().Bool("hoist-releases", false, "also hoist releases back to predecessors / into switch arms")
}

type benchResult struct {
	path    string
	dur     time.Duration
	changed bool
	stats   arcmotion.Stats
	loadErr error
}

func runBench(cmd *cobra.Command, args []string) error {
	jobs, _ := cmd.Flags().GetInt("jobs")
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	hoist, _ := cmd.Flags().GetBool("hoist-releases")

	results := make([]benchResult, len(args))
	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(min(jobs, len(args)))

	for i, path := range args {
		g.Go(func(i int, path string) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				f, err := loadFixtureFunction(path)
				if err != nil {
					results[i] = benchResult{path: path, loadErr: err}
					return nil
				}

				start := time.Now()
				stats, changed := arcmotion.Run(f, arcmotion.Options{HoistReleases: hoist})
				results[i] = benchResult{
					path:    path,
					dur:     time.Since(start),
					changed: changed,
					stats:   stats,
				}
				return nil
			}
		}(i, path))
	}

	if err := g.Wait(); err != nil {
		return err
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].path < results[j].path })
	printBenchTable(cmd.OutOrStdout(), results)
	return nil
}

func printBenchTable(out io.Writer, results []benchResult) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "fixture\ttime\tchanged\tsunk\thoisted\trc-simplified")
	for _, r := range results {
		if r.loadErr != nil {
			fmt.Fprintf(tw, "%s\tERROR\t%v\t-\t-\t-\n", r.path, r.loadErr)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%v\t%d\t%d\t%d\n",
			r.path, r.dur.Round(time.Microsecond), r.changed,
			r.stats.NumSunk, r.stats.NumHoisted, r.stats.NumRefCountOpsSimplified)
	}
	tw.Flush()
}
