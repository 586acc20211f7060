// Package cli implements the command-line interface for countersign.
// Commands are thin adapters over the driving ports; main wires the
// concrete services in through Configure before Execute runs.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/countersign-labs/countersign-cli/internal/core/ports/driven"
	"github.com/countersign-labs/countersign-cli/internal/core/ports/driving"
	"github.com/countersign-labs/countersign-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// verbose enables debug logging for all commands.
var verbose bool

// Services the commands operate on. Nil services make their commands
// fail with a clear error instead of panicking, which keeps partial
// wiring (e.g. no provider configured yet) usable.
var (
	documentService  driving.DocumentService
	statusReconciler driving.StatusReconciler
	reminderSender   driving.ReminderSender
	schedulerService driving.Scheduler
	configStore      driven.ConfigStore
	templateStore    driven.TemplateStore
)

var rootCmd = &cobra.Command{
	Use:   "countersign",
	Short: "Track and nudge e-signature workflows from the terminal",
	Long: `Countersign keeps a local record of documents sent for signature and
reconciles it against the e-signature provider: who has signed, whose
turn it is, and who needs a reminder.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug output")
}

// Services bundles everything the commands need.
type Services struct {
	Documents  driving.DocumentService
	Reconciler driving.StatusReconciler
	Reminders  driving.ReminderSender
	Scheduler  driving.Scheduler
	Config     driven.ConfigStore
	Templates  driven.TemplateStore
}

// Configure wires concrete services into the command tree.
func Configure(s Services) {
	documentService = s.Documents
	statusReconciler = s.Reconciler
	reminderSender = s.Reminders
	schedulerService = s.Scheduler
	configStore = s.Config
	templateStore = s.Templates
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
