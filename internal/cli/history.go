package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ppiankov/umactually/internal/analysis"
	"github.com/ppiankov/umactually/internal/render"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, show and remove past analyses",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past analyses, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer a.Close()
		entries := a.store.List()
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No analyses yet.")
			return nil
		}
		if historyLimit > 0 && len(entries) > historyLimit {
			entries = entries[:historyLimit]
		}
		render.HistoryTable(cmd.OutOrStdout(), entries, time.Now())
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a past analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer a.Close()
		out, err := openEntry(a, args[0])
		if err != nil {
			return err
		}

		a.printer.Header(fmt.Sprintf("Analysis %s", out.HistoryID))
		if out.VideoURL != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", a.printer.Dim("video:"), out.VideoURL)
		}
		a.printer.Result(out.Result)
		if len(out.Transcript) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", a.printer.Dim(fmt.Sprintf("%d transcript segments; replay with: umactually replay %s", len(out.Transcript), out.HistoryID)))
		}
		return writeReports(a, out, outJSON, outMD, !noFooter)
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove", "delete"},
	Short:   "Remove a past analysis",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer a.Close()
		if _, ok := a.store.Get(args[0]); !ok {
			return fmt.Errorf("no analysis with id %s", args[0])
		}
		if err := a.store.Remove(args[0]); err != nil {
			return fmt.Errorf("remove analysis: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Removed %s\n", args[0])
		return nil
	},
}

var historyWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reprint the history whenever it changes",
	Long: `Watch prints the history list and reprints it every time the history
file changes, including changes made by other umactually processes.
Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer a.Close()
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		changes, unsubscribe := a.store.Subscribe()
		defer unsubscribe()

		watchErr := make(chan error, 1)
		go func() { watchErr <- a.store.Watch(ctx) }()

		render.HistoryTable(cmd.OutOrStdout(), a.store.List(), time.Now())
		fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", a.store.Path())

		for {
			select {
			case <-ctx.Done():
				return nil
			case err := <-watchErr:
				if err != nil {
					return fmt.Errorf("watch history: %w", err)
				}
				return nil
			case change, ok := <-changes:
				if !ok {
					return nil
				}
				logger.Debug("history changed", "source", change.Source, "entries", len(change.Entries))
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", a.printer.Dim(fmt.Sprintf("── updated %s (%s) ──", time.Now().Format("15:04:05"), change.Source)))
				render.HistoryTable(cmd.OutOrStdout(), change.Entries, time.Now())
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyRemoveCmd, historyWatchCmd)

	historyListCmd.Flags().IntVar(&historyLimit, "limit", 0, "show at most this many entries")
	historyShowCmd.Flags().StringVar(&outJSON, "json", "", "write a JSON report to this path")
	historyShowCmd.Flags().StringVar(&outMD, "md", "", "write a Markdown report to this path")
	historyShowCmd.Flags().BoolVar(&noFooter, "no-footer", false, "omit the footer in Markdown reports")
}

// openEntry reopens a stored analysis, failing with a clear message for unknown IDs
func openEntry(a *app, id string) (*analysis.Outcome, error) {
	out, err := analysis.Open(a.store, id)
	if errors.Is(err, analysis.ErrNotFound) {
		return nil, fmt.Errorf("no analysis with id %s (see: umactually history list)", id)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

