package domain

import "time"

// ReminderConfig holds reminder dispatch configuration.
type ReminderConfig struct {
	// Cooldown is the minimum gap between reminders to the same
	// recipient. The default matches the provider-imposed minimum.
	Cooldown time.Duration

	// DefaultMessage is used when the caller supplies no message.
	DefaultMessage string
}

// DefaultReminderConfig returns the reminder defaults.
func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{
		Cooldown:       24 * time.Hour,
		DefaultMessage: "Please review and sign the document.",
	}
}

// ProviderConfig holds e-signature provider connection settings.
type ProviderConfig struct {
	// BaseURL is the provider API base, e.g. "https://api.eu1.adobesign.com".
	BaseURL string

	// AccessToken is the integration access token.
	AccessToken string

	// RequestTimeout bounds each provider HTTP request.
	RequestTimeout time.Duration

	// MaxRetries caps retry attempts for transient failures.
	MaxRetries int

	// RetryBaseDelay is the initial backoff delay; it doubles per attempt.
	RetryBaseDelay time.Duration
}

// DefaultProviderConfig returns provider connection defaults.
// BaseURL and AccessToken have no defaults and must come from config.
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		RequestTimeout: 30 * time.Second,
		MaxRetries:     3,
		RetryBaseDelay: time.Second,
	}
}
