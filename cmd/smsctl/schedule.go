package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/onurcolak/sms-scheduler/internal/domain"
)

// Accepted time formats for command line input, interpreted in the scheduler timezone.
var inputTimeLayouts = []string{
	"2006-01-02T15:04:05",
	domain.TimeLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

const previewLength = 30

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage scheduled messages",
}

var scheduleAddCmd = &cobra.Command{
	Use:   "add <recipient> <message> <time>",
	Short: "Schedule a new message (time as YYYY-MM-DDTHH:MM:SS)",
	Args:  cobra.ExactArgs(3),
	RunE:  runScheduleAdd,
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled messages",
	Args:  cobra.NoArgs,
	RunE:  runScheduleList,
}

var scheduleCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a scheduled message",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleCancel,
}

var scheduleUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a scheduled message",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleUpdate,
}

func init() {
	scheduleAddCmd.Flags().String("recurring", "", "Recurrence: daily, weekly, monthly or custom")
	scheduleAddCmd.Flags().Int("days-interval", 0, "Days between sends for custom recurrence")
	scheduleAddCmd.Flags().String("provider", "", "SMS provider (default: configured default)")

	scheduleListCmd.Flags().Bool("all", false, "Include sent and failed messages")
	scheduleListCmd.Flags().String("status", "", "Only show messages with this status")

	scheduleUpdateCmd.Flags().String("recipient", "", "New recipient")
	scheduleUpdateCmd.Flags().String("message", "", "New message body")
	scheduleUpdateCmd.Flags().String("time", "", "New scheduled time")
	scheduleUpdateCmd.Flags().String("recurring", "", "New recurrence: none, daily, weekly, monthly or custom")
	scheduleUpdateCmd.Flags().Int("days-interval", 0, "New days interval for custom recurrence")
	scheduleUpdateCmd.Flags().String("provider", "", "New SMS provider")

	scheduleCmd.AddCommand(scheduleAddCmd, scheduleListCmd, scheduleCancelCmd, scheduleUpdateCmd)
}

func runScheduleAdd(cmd *cobra.Command, args []string) error {
	loc := cfg.Scheduler.Location()

	when, err := parseFutureTime(args[2], loc, time.Now())
	if err != nil {
		return err
	}

	kind, _ := cmd.Flags().GetString("recurring")
	days, _ := cmd.Flags().GetInt("days-interval")
	provider, _ := cmd.Flags().GetString("provider")

	recurrence, err := recurrenceFromFlags(kind, days)
	if err != nil {
		return err
	}

	id, err := app.Scheduler.Schedule(cmd.Context(), domain.ScheduleRequest{
		Recipient:     args[0],
		Body:          args[1],
		ScheduledTime: when,
		Recurrence:    recurrence,
		Provider:      provider,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Message %d scheduled for %s\n", id, when.In(loc).Format(domain.TimeLayout))
	if recurrence.IsRecurring() {
		fmt.Fprintf(cmd.OutOrStdout(), "Recurs %s\n", recurrence)
	}
	return nil
}

func runScheduleList(cmd *cobra.Command, _ []string) error {
	all, _ := cmd.Flags().GetBool("all")
	statusFlag, _ := cmd.Flags().GetString("status")

	var status *domain.MessageStatus
	switch {
	case statusFlag != "":
		s := domain.MessageStatus(statusFlag)
		if !s.Valid() {
			return fmt.Errorf("status must be one of pending, sent, failed")
		}
		status = &s
	case !all:
		s := domain.StatusPending
		status = &s
	}

	messages, err := app.Scheduler.ListScheduled(cmd.Context(), status)
	if err != nil {
		return err
	}

	if len(messages) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No scheduled messages found.")
		return nil
	}

	writeMessageTable(cmd, messages, cfg.Scheduler.Location())
	return nil
}

func runScheduleCancel(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid message id %q", args[0])
	}

	if err := app.Scheduler.Cancel(cmd.Context(), id); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Message %d cancelled\n", id)
	return nil
}

func runScheduleUpdate(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid message id %q", args[0])
	}

	var upd domain.MessageUpdate
	flags := cmd.Flags()

	if flags.Changed("recipient") {
		v, _ := flags.GetString("recipient")
		upd.Recipient = &v
	}
	if flags.Changed("message") {
		v, _ := flags.GetString("message")
		upd.Body = &v
	}
	if flags.Changed("provider") {
		v, _ := flags.GetString("provider")
		upd.Provider = &v
	}
	if flags.Changed("time") {
		v, _ := flags.GetString("time")
		when, err := parseFutureTime(v, cfg.Scheduler.Location(), time.Now())
		if err != nil {
			return err
		}
		upd.ScheduledTime = &when
	}
	kind, _ := flags.GetString("recurring")
	days, _ := flags.GetInt("days-interval")
	recurrence, err := recurrenceUpdateFromFlags(flags.Changed("recurring"), kind, flags.Changed("days-interval"), days)
	if err != nil {
		return err
	}
	upd.Recurrence = recurrence

	if err := app.Scheduler.Update(cmd.Context(), id, upd); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Message %d updated\n", id)
	return nil
}

// parseFutureTime reads s in loc and rejects times that are not after now.
func parseFutureTime(s string, loc *time.Location, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range inputTimeLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		if !t.After(now) {
			return time.Time{}, fmt.Errorf("scheduled time must be in the future")
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid scheduled time %q, use YYYY-MM-DDTHH:MM:SS", s)
}

func recurrenceFromFlags(kind string, days int) (domain.Recurrence, error) {
	parsed, err := domain.ParseRecurrenceKind(kind)
	if err != nil {
		return domain.Recurrence{}, err
	}

	r := domain.Recurrence{Kind: parsed, DaysInterval: days}.Normalized()
	if err := r.Validate(); err != nil {
		return domain.Recurrence{}, err
	}
	return r, nil
}

// recurrenceUpdateFromFlags returns nil when neither flag was given. A bare
// --days-interval is rejected so the stored kind is never changed implicitly.
func recurrenceUpdateFromFlags(kindSet bool, kind string, daysSet bool, days int) (*domain.Recurrence, error) {
	if !kindSet {
		if daysSet {
			return nil, fmt.Errorf("%w: --days-interval requires --recurring", domain.ErrInvalidRecurrence)
		}
		return nil, nil
	}

	r, err := recurrenceFromFlags(kind, days)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func preview(body string) string {
	runes := []rune(body)
	if len(runes) <= previewLength {
		return body
	}
	return string(runes[:previewLength-3]) + "..."
}

func writeMessageTable(cmd *cobra.Command, messages []domain.ScheduledMessage, loc *time.Location) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRECIPIENT\tMESSAGE\tSCHEDULED TIME\tRECURRING\tSTATUS")
	for _, msg := range messages {
		recurring := ""
		if msg.Recurrence.IsRecurring() {
			recurring = msg.Recurrence.String()
		}
		scheduled := ""
		if !msg.ScheduledTime.IsZero() {
			scheduled = msg.ScheduledTime.In(loc).Format(domain.TimeLayout)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			msg.ID, msg.Recipient, preview(msg.Body), scheduled, recurring, msg.Status)
	}
	w.Flush()
}
