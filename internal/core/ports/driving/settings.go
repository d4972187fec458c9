package driving

import "github.com/custodia-labs/folio/internal/core/domain"

// SettingsService resolves and persists application settings.
type SettingsService interface {
	// Get returns settings from the config store, with environment
	// overrides applied and defaults filling the gaps.
	Get() (*domain.AppSettings, error)

	// Set validates and persists a single setting by key.
	Set(key, value string) error

	// Keys returns the recognised setting keys.
	Keys() []string
}
