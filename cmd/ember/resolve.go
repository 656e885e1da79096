package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ember/internal/driver"
	"ember/internal/session"
	"ember/internal/share"
)

var (
	resolveProfile   string
	resolveUI        string
	resolveJobs      int
	resolveFold      bool
	resolveShare     bool
	resolveRegistry  string
	resolveCacheOnly bool
)

func init() {
	resolveCmd.Flags().StringVar(&resolveProfile, "profile", "", "path to an ember.toml build profile")
	resolveCmd.Flags().StringVar(&resolveUI, "ui", "auto", "interactive progress (auto|on|off)")
	resolveCmd.Flags().IntVar(&resolveJobs, "jobs", 0, "parallel resolution workers (0 = one per CPU)")
	resolveCmd.Flags().BoolVar(&resolveFold, "fold", false, "fold specializations that differ only in unused arguments")
	resolveCmd.Flags().BoolVar(&resolveShare, "share-generics", true, "link against upstream monomorphizations")
	resolveCmd.Flags().StringVar(&resolveRegistry, "registry-key", "", "load the cached sharing registry for this dependency-graph key")
	resolveCmd.Flags().BoolVar(&resolveCacheOnly, "no-cache", false, "skip the on-disk registry cache")
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <snapshot>",
	Short: "Resolve the call sites recorded in a program snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}
		mode, err := readUIMode(resolveUI)
		if err != nil {
			return err
		}

		prog, err := driver.LoadSnapshot(args[0])
		if err != nil {
			return err
		}

		reg := share.NewRegistry()
		if resolveRegistry != "" && !resolveCacheOnly {
			cache, err := driver.OpenRegistryCache(appName)
			if err != nil {
				return err
			}
			if _, err := cache.Get(resolveRegistry, reg); err != nil {
				return err
			}
		}

		eng := driver.NewEngine(opts, prog.Defs, prog.Types, prog.Unused, reg)

		var results []driver.Outcome
		if shouldUseTUI(mode) {
			results, err = runResolveWithUI(cmd.Context(), "resolving "+args[0], eng, prog.Requests)
		} else {
			results, err = eng.ResolveAll(cmd.Context(), prog.Requests)
		}
		if err != nil {
			return err
		}
		return printOutcomes(cmd.OutOrStdout(), eng, prog.Requests, results)
	},
}

// loadOptions merges the profile file, the defaults, and the explicit flags.
// A flag the user set always wins over the profile.
func loadOptions(cmd *cobra.Command) (session.Options, error) {
	opts := session.Default()
	if resolveProfile != "" {
		var err error
		opts, err = session.LoadProfile(resolveProfile)
		if err != nil {
			return opts, err
		}
	}
	if cmd.Flags().Changed("jobs") {
		opts.Jobs = resolveJobs
	}
	if cmd.Flags().Changed("fold") {
		opts.FoldSpecializations = resolveFold
	}
	if cmd.Flags().Changed("share-generics") {
		opts.ShareGenerics = resolveShare
	}
	return opts, nil
}

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

func printOutcomes(out io.Writer, eng *driver.Engine, reqs []driver.Request, results []driver.Outcome) error {
	errs := 0
	for i, res := range results {
		label := reqs[i].Label
		if label == "" {
			label = fmt.Sprintf("request#%d", i)
		}
		switch {
		case res.Err != nil:
			errs++
			failColor.Fprintf(out, "error  ")
			fmt.Fprintf(out, "%s: %v\n", label, res.Err)
		case res.Instance == nil:
			dimColor.Fprintf(out, "open   ")
			fmt.Fprintf(out, "%s: still generic\n", label)
		default:
			okColor.Fprintf(out, "ok     ")
			fmt.Fprintf(out, "%s -> %s", label, res.Instance.Render(eng.Defs, eng.Types))
			if res.Shared {
				dimColor.Fprintf(out, " [shared with unit %d]", res.Unit)
			} else if res.Duplicate {
				dimColor.Fprintf(out, " [per-unit copy]")
			}
			fmt.Fprintln(out)
		}
	}
	if errs > 0 {
		return fmt.Errorf("%d of %d requests failed", errs, len(results))
	}
	return nil
}

func init() {
	// Honor the global color flag before any output happens.
	cobra.OnInitialize(func() {
		switch v, _ := rootCmd.PersistentFlags().GetString("color"); v {
		case "on":
			color.NoColor = false
		case "off":
			color.NoColor = true
		default:
			color.NoColor = !isTerminal(os.Stdout)
		}
	})
}
