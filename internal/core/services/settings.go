package services

import (
	"fmt"

	"github.com/custodia-labs/reshelve/internal/core/domain"
	"github.com/custodia-labs/reshelve/internal/core/ports/driven"
	"github.com/custodia-labs/reshelve/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keySchemaInput    = "schema.input"
	keySchemaOutput   = "schema.output"
	keyLogFile        = "log.file"
	keyIncludeHidden  = "walk.include_hidden"
	keyHistoryEnabled = "history.enabled"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
// The schema is returned as configured; validation is the caller's job.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		Schema: domain.Schema{
			Input:  s.getStringSlice(keySchemaInput, defaults.Schema.Input),
			Output: s.getStringSlice(keySchemaOutput, defaults.Schema.Output),
		},
		LogFile:        s.getString(keyLogFile, defaults.LogFile),
		IncludeHidden:  s.getBool(keyIncludeHidden, defaults.IncludeHidden),
		HistoryEnabled: s.getBool(keyHistoryEnabled, defaults.HistoryEnabled),
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if err := s.configStore.Set(keySchemaInput, settings.Schema.Input); err != nil {
		return fmt.Errorf("save schema input: %w", err)
	}
	if err := s.configStore.Set(keySchemaOutput, settings.Schema.Output); err != nil {
		return fmt.Errorf("save schema output: %w", err)
	}
	if err := s.configStore.Set(keyLogFile, settings.LogFile); err != nil {
		return fmt.Errorf("save log file: %w", err)
	}
	if err := s.configStore.Set(keyIncludeHidden, settings.IncludeHidden); err != nil {
		return fmt.Errorf("save include hidden: %w", err)
	}
	if err := s.configStore.Set(keyHistoryEnabled, settings.HistoryEnabled); err != nil {
		return fmt.Errorf("save history enabled: %w", err)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return *domain.DefaultSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}
