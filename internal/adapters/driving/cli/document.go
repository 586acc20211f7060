package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/countersign-labs/countersign-cli/internal/core/domain"
	"github.com/countersign-labs/countersign-cli/internal/core/ports/driving"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage tracked documents",
	Long:  `Add, list, inspect, or remove documents tracked for signature.`,
}

var documentAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Track a new document",
	Long: `Registers a document and its recipients for tracking.

Recipients are given as --recipient email[:name[:order]]. Recipients
sharing an order sign in parallel; distinct orders sign sequentially.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentAdd,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked documents",
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentSentCmd = &cobra.Command{
	Use:   "sent [doc-id] [agreement-id]",
	Short: "Record that a document went out for signature",
	Long: `Binds a tracked document to the provider agreement it was sent as.
Subsequent status checks reconcile against that agreement.`,
	Args: cobra.ExactArgs(2),
	RunE: runDocumentSent,
}

var documentRemoveCmd = &cobra.Command{
	Use:   "remove [doc-id]",
	Short: "Stop tracking a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentRemove,
}

// recipientFlags collects repeated --recipient values for add.
var recipientFlags []string

func init() {
	documentAddCmd.Flags().StringArrayVarP(&recipientFlags, "recipient", "r", nil,
		"Recipient as email[:name[:order]] (repeatable)")

	documentCmd.AddCommand(documentAddCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentSentCmd)
	documentCmd.AddCommand(documentRemoveCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentAdd(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	if len(recipientFlags) == 0 {
		return errors.New("at least one --recipient is required")
	}

	recipients := make([]driving.NewRecipient, 0, len(recipientFlags))
	for _, raw := range recipientFlags {
		r, err := parseRecipient(raw)
		if err != nil {
			return err
		}
		recipients = append(recipients, r)
	}

	doc, err := documentService.Create(context.Background(), args[0], recipients)
	if err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}

	cmd.Printf("Tracking document %s (%s)\n", doc.ID, doc.Name)
	cmd.Printf("  Flow: %s, %d recipient(s)\n", doc.SigningFlow, len(doc.Recipients))
	return nil
}

// parseRecipient parses email[:name[:order]].
func parseRecipient(raw string) (driving.NewRecipient, error) {
	parts := strings.SplitN(raw, ":", 3)
	r := driving.NewRecipient{Email: strings.TrimSpace(parts[0]), Order: 1}
	if r.Email == "" {
		return r, fmt.Errorf("invalid recipient %q: empty email", raw)
	}
	if len(parts) > 1 {
		r.Name = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		order, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil || order < 1 {
			return r, fmt.Errorf("invalid recipient %q: order must be a positive integer", raw)
		}
		r.Order = order
	}
	return r, nil
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents tracked.")
		return nil
	}

	cmd.Println("Tracked documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Name:   %s\n", docs[i].Name)
		cmd.Printf("    Status: %s\n", docs[i].Status)
		if docs[i].ProviderAgreementID != "" {
			cmd.Printf("    Agreement: %s\n", docs[i].ProviderAgreementID)
		}
		cmd.Println()
	}
	cmd.Printf("Total: %d document(s)\n", len(docs))
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	printDocument(cmd, doc)
	return nil
}

// printDocument renders a document with its recipients.
func printDocument(cmd *cobra.Command, doc *domain.Document) {
	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Name:      %s\n", doc.Name)
	cmd.Printf("  Status:    %s\n", doc.Status)
	cmd.Printf("  Flow:      %s\n", doc.SigningFlow)
	if doc.ProviderAgreementID != "" {
		cmd.Printf("  Agreement: %s\n", doc.ProviderAgreementID)
	}
	if doc.CompletedAt != nil {
		cmd.Printf("  Completed: %s\n", doc.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	if doc.ReminderCount > 0 {
		cmd.Printf("  Reminders: %d\n", doc.ReminderCount)
	}
	cmd.Printf("  Created:   %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))

	cmd.Println("\n  Recipients:")
	for i := range doc.Recipients {
		r := &doc.Recipients[i]
		label := r.Email
		if r.Name != "" {
			label = fmt.Sprintf("%s <%s>", r.Name, r.Email)
		}
		cmd.Printf("    %d. %s: %s", r.Order, label, r.State)
		if r.SignedAt != nil {
			cmd.Printf(" (signed %s)", r.SignedAt.Format("2006-01-02 15:04"))
		}
		cmd.Println()
	}
}

func runDocumentSent(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.MarkSent(context.Background(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to mark document sent: %w", err)
	}

	cmd.Printf("Document %s bound to agreement %s (%s).\n",
		doc.ID, doc.ProviderAgreementID, doc.Status)
	return nil
}

func runDocumentRemove(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}

	cmd.Printf("Removed document: %s\n", args[0])
	return nil
}
