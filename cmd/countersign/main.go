// Command countersign tracks documents sent for e-signature, reconciles
// their status against the provider, and reminds pending signers.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/countersign-labs/countersign-cli/internal/adapters/driven/config/file"
	"github.com/countersign-labs/countersign-cli/internal/adapters/driven/provider/adobesign"
	"github.com/countersign-labs/countersign-cli/internal/adapters/driven/storage/sqlite"
	"github.com/countersign-labs/countersign-cli/internal/adapters/driving/cli"
	"github.com/countersign-labs/countersign-cli/internal/core/domain"
	"github.com/countersign-labs/countersign-cli/internal/core/ports/driven"
	"github.com/countersign-labs/countersign-cli/internal/core/services"
	"github.com/countersign-labs/countersign-cli/internal/logger"
)

// version is injected at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	templates, err := file.NewTemplateStore("")
	if err != nil {
		return fmt.Errorf("open templates: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	docStore := store.DocumentStore()
	svcs := cli.Services{
		Documents: services.NewDocumentService(docStore),
		Config:    cfg,
		Templates: templates,
	}

	// Provider-backed services only exist once the provider is
	// configured; the remaining commands work without it.
	providerCfg := providerConfig(cfg)
	if providerCfg.BaseURL != "" && providerCfg.AccessToken != "" {
		client, err := adobesign.NewClient(providerCfg)
		if err != nil {
			return fmt.Errorf("provider client: %w", err)
		}
		source := adobesign.NewSource(client)
		dispatcher := adobesign.NewDispatcher(client)

		reconciler := services.NewReconcileOrchestrator(source, docStore)
		svcs.Reconciler = reconciler
		svcs.Reminders = services.NewReminderService(
			reconciler, docStore, dispatcher, reminderConfig(cfg))
		svcs.Scheduler = services.NewScheduler(
			schedulerConfig(cfg), store.SchedulerStore(), docStore, reconciler)
	} else {
		logger.Debug("provider not configured, status and reminder commands disabled")
	}

	cli.SetVersion(version)
	cli.Configure(svcs)
	return cli.Execute()
}

// providerConfig reads provider settings over the defaults.
func providerConfig(cfg driven.ConfigStore) domain.ProviderConfig {
	pc := domain.DefaultProviderConfig()
	pc.BaseURL = cfg.GetString("provider.base_url")
	pc.AccessToken = cfg.GetString("provider.access_token")
	if v := cfg.GetInt("provider.request_timeout_seconds"); v > 0 {
		pc.RequestTimeout = time.Duration(v) * time.Second
	}
	if v := cfg.GetInt("provider.max_retries"); v > 0 {
		pc.MaxRetries = v
	}
	return pc
}

// reminderConfig reads reminder settings over the defaults.
func reminderConfig(cfg driven.ConfigStore) domain.ReminderConfig {
	rc := domain.DefaultReminderConfig()
	if v := cfg.GetInt("reminder.cooldown_hours"); v > 0 {
		rc.Cooldown = time.Duration(v) * time.Hour
	}
	return rc
}

// schedulerConfig reads scheduler settings over the defaults.
func schedulerConfig(cfg driven.ConfigStore) domain.SchedulerConfig {
	sc := domain.DefaultSchedulerConfig()
	if v := cfg.GetInt("scheduler.interval_hours"); v > 0 {
		task := sc.TaskConfigs[domain.TaskIDStatusSync]
		task.Interval = time.Duration(v) * time.Hour
		sc.TaskConfigs[domain.TaskIDStatusSync] = task
	}
	return sc
}
