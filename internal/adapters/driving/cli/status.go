package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [doc-id]",
	Short: "Refresh a document's signature status",
	Long: `Fetches the current agreement state from the provider, merges it into
the local record, and prints the result. If the provider is unreachable
the last known local state is shown instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if statusReconciler == nil {
		return errors.New("status service not configured (set provider.base_url and provider.access_token)")
	}

	doc, err := statusReconciler.Refresh(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to refresh status: %w", err)
	}

	printDocument(cmd, doc)
	return nil
}
