package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"solrbench/internal/config"
	"solrbench/internal/report"
	"solrbench/internal/storage"
	"solrbench/internal/tui/styles"
)

func newHistoryCmd(v *viper.Viper) *cobra.Command {
	var limit int

	c := &cobra.Command{
		Use:   "history",
		Short: "List previous benchmark runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(v)
			if err != nil {
				return err
			}
			defer store.Close()

			items, err := store.List(limit)
			if err != nil {
				return err
			}

			printHistory(cmd.OutOrStdout(), items)
			return nil
		},
	}

	c.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show, 0 for all")
	c.AddCommand(newHistoryShowCmd(v))

	return c
}

func newHistoryShowCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored run, by ID or unique ID prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(v)
			if err != nil {
				return err
			}
			defer store.Close()

			item, err := store.Get(args[0])
			if err != nil {
				return err
			}

			printRun(cmd.OutOrStdout(), item)
			return nil
		},
	}
}

func openHistory(v *viper.Viper) (*storage.Store, error) {
	path := config.Load(v).HistoryDB
	if path == "" {
		return nil, errors.New("history is disabled (empty --history-db)")
	}
	return storage.NewStore(path)
}

func printHistory(w io.Writer, items []storage.HistoryItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.Subtle).
		Headers("STARTED", "ID", "CONC", "DURATION", "REQUESTS", "FAILED", "QPS", "AVG (s)", "P99 (ms)")

	for _, it := range items {
		t.Row(
			it.Timestamp.Local().Format("2006-01-02 15:04:05"),
			shortID(it.ID),
			fmt.Sprintf("%d", it.Config.Concurrency),
			fmt.Sprintf("%.2fs", it.Summary.ElapsedSec),
			fmt.Sprintf("%d", it.Summary.TotalRequests),
			fmt.Sprintf("%d", it.Summary.Fail),
			fmt.Sprintf("%.2f", it.Summary.QPS),
			fmt.Sprintf("%.4f", it.Summary.AvgLatencySec),
			fmt.Sprintf("%.2f", it.Summary.P99LatencyMs),
		)
	}

	fmt.Fprintln(w, t.String())
}

func printRun(w io.Writer, it *storage.HistoryItem) {
	rows := []struct{ label, value string }{
		{"Run ID", it.ID},
		{"Started", it.Timestamp.Local().Format("2006-01-02 15:04:05")},
		{"URL", it.Config.BaseURL},
		{"Output", it.Config.Output},
		{"Configured Duration", it.Config.Duration.String()},
		{report.LabelConcurrency, fmt.Sprintf("%d", it.Config.Concurrency)},
		{report.LabelDuration, fmt.Sprintf("%.2f seconds", it.Summary.ElapsedSec)},
		{report.LabelTotal, fmt.Sprintf("%d", it.Summary.TotalRequests)},
		{report.LabelSuccess, fmt.Sprintf("%d", it.Summary.Success)},
		{report.LabelFailed, fmt.Sprintf("%d", it.Summary.Fail)},
		{report.LabelQPS, fmt.Sprintf("%.2f", it.Summary.QPS)},
		{report.LabelAvgResponse, fmt.Sprintf("%.4f seconds", it.Summary.AvgLatencySec)},
		{"P99 Response Time", fmt.Sprintf("%.2f ms", it.Summary.P99LatencyMs)},
	}

	for _, r := range rows {
		fmt.Fprintf(w, "%s %s\n", styles.Subtle.Render(fmt.Sprintf("%-26s:", r.label)), r.value)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
