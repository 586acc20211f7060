package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/countersign-labs/countersign-cli/internal/core/ports/driven"
)

var remindCmd = &cobra.Command{
	Use:   "remind [doc-id]",
	Short: "Remind whoever is currently holding up a document",
	Long: `Reconciles the document, works out whose turn it is to sign, and sends
each of them a reminder. Recipients reminded within the cooldown window
are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemind,
}

// remindMessage is the --message flag for remind.
var remindMessage string

func init() {
	remindCmd.Flags().StringVarP(&remindMessage, "message", "m", "",
		"Reminder message (default: the reminder template)")
	rootCmd.AddCommand(remindCmd)
}

func runRemind(cmd *cobra.Command, args []string) error {
	if reminderSender == nil {
		return errors.New("reminder service not configured (set provider.base_url and provider.access_token)")
	}

	message := remindMessage
	if message == "" && templateStore != nil {
		tpl, err := templateStore.Load(driven.TemplateReminder)
		if err == nil {
			message = tpl
		}
	}

	report, err := reminderSender.Send(context.Background(), args[0], message)
	if err != nil {
		return fmt.Errorf("failed to send reminders: %w", err)
	}

	if len(report.Targets) == 0 {
		cmd.Println("Nobody is currently waiting to sign (or everyone was reminded recently).")
		return nil
	}

	cmd.Printf("Reminded %d of %d recipient(s):\n", report.Sent, len(report.Targets))
	for _, email := range report.Targets {
		cmd.Printf("  %s\n", email)
	}
	if report.Failed > 0 {
		cmd.Printf("%d delivery failure(s); run with --verbose for details.\n", report.Failed)
	}
	return nil
}
