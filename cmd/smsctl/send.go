package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/onurcolak/sms-scheduler/internal/domain"
)

var sendCmd = &cobra.Command{
	Use:   "send <recipient> <message>",
	Short: "Send a message immediately",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, _ := cmd.Flags().GetString("provider")

		receipt, err := app.Delivery.Send(cmd.Context(), domain.OutboundSMS{
			Recipient: args[0],
			Body:      args[1],
			Provider:  provider,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Sent via %s (id %s)\n", receipt.Provider, receipt.ProviderMessageID)
		return nil
	},
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured SMS providers and their remaining quota",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		names := app.SMS.Names()
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No SMS providers configured.")
			return nil
		}

		defaultName := app.SMS.DefaultName()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PROVIDER\tDEFAULT\tQUOTA")
		for _, name := range names {
			quota := "n/a"
			if remaining, err := app.SMS.Quota(cmd.Context(), name); err == nil {
				quota = fmt.Sprintf("%d", remaining)
			}
			isDefault := ""
			if name == defaultName {
				isDefault = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", name, isDefault, quota)
		}
		return w.Flush()
	},
}

func init() {
	sendCmd.Flags().String("provider", "", "SMS provider (default: configured default)")
}
