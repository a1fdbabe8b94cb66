package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/onurcolak/sms-scheduler/internal/domain"
	"github.com/onurcolak/sms-scheduler/internal/repository"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past delivery attempts",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent delivery attempts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		if limit < 1 {
			return fmt.Errorf("--limit must be at least 1")
		}

		entries, err := app.Delivery.GetHistory(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No messages sent yet")
			return nil
		}

		writeHistoryTable(cmd.OutOrStdout(), entries, cfg.Scheduler.Location())
		return nil
	},
}

func init() {
	historyListCmd.Flags().Int("limit", repository.DefaultHistoryLimit, "Maximum number of entries to show")
	historyCmd.AddCommand(historyListCmd)
}

func writeHistoryTable(out io.Writer, entries []domain.HistoryEntry, loc *time.Location) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SENT AT\tRECIPIENT\tMESSAGE\tPROVIDER\tSTATUS\tDETAIL")
	for _, e := range entries {
		detail := e.ProviderMessageID
		if e.Status == domain.StatusFailed {
			detail = e.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.SentAt.In(loc).Format(domain.TimeLayout), e.Recipient, preview(e.Body), e.Provider, e.Status, detail)
	}
	w.Flush()
}
