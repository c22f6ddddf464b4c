package admin

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/playpool/pong3d/internal/config"
	"github.com/playpool/pong3d/internal/game"
	"github.com/playpool/pong3d/internal/models"
)

var (
	ErrUnknownConfigKey   = errors.New("unknown config key")
	ErrInvalidConfigValue = errors.New("invalid config value")
)

// GetAllRuntimeConfig returns all runtime config entries
func GetAllRuntimeConfig(db *sqlx.DB) ([]models.RuntimeConfig, error) {
	configs := []models.RuntimeConfig{}
	err := db.Select(&configs, `
		SELECT key, value, value_type, description, updated_by, updated_at
		FROM runtime_config
		ORDER BY key
	`)
	return configs, err
}

// ValidateValue checks value against a runtime config type
func ValidateValue(valueType, value string) error {
	switch valueType {
	case "int":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
		if v < 0 {
			return fmt.Errorf("value cannot be negative: %s", value)
		}
	case "float":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value: %s", value)
		}
		if v <= 0 {
			return fmt.Errorf("value must be positive: %s", value)
		}
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid boolean value: %s (must be 'true' or 'false')", value)
		}
	}
	return nil
}

// ValidateOverride checks that setting key to value keeps the whole set of
// overrides valid on top of base, and returns the defaults it would produce.
func ValidateOverride(entries []models.RuntimeConfig, key, value string, base game.Settings) (game.Settings, error) {
	next := make([]models.RuntimeConfig, len(entries))
	copy(next, entries)

	found := false
	for i := range next {
		if next[i].Key != key {
			continue
		}
		if err := ValidateValue(next[i].ValueType, value); err != nil {
			return game.Settings{}, fmt.Errorf("%w: %v", ErrInvalidConfigValue, err)
		}
		next[i].Value = value
		found = true
	}
	if !found {
		return game.Settings{}, fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
	}

	s, _, err := ApplyOverrides(next, base)
	if err != nil {
		return game.Settings{}, fmt.Errorf("%w: %v", ErrInvalidConfigValue, err)
	}
	return s, nil
}

// UpdateRuntimeConfigValue stores a single runtime config value if the
// resulting defaults are valid, and returns those defaults
func UpdateRuntimeConfigValue(db *sqlx.DB, key, value, adminUsername string, base game.Settings) (game.Settings, error) {
	entries, err := GetAllRuntimeConfig(db)
	if err != nil {
		return game.Settings{}, err
	}
	s, err := ValidateOverride(entries, key, value, base)
	if err != nil {
		return game.Settings{}, err
	}

	_, err = db.Exec(`
		UPDATE runtime_config SET value=$1, updated_by=$2, updated_at=NOW() WHERE key=$3
	`, value, adminUsername, key)
	if err != nil {
		return game.Settings{}, err
	}
	return s, nil
}

// LoadRuntimeDefaults applies the stored overrides to the env defaults in cfg.
// cfg itself is not modified.
func LoadRuntimeDefaults(db *sqlx.DB, cfg *config.Config) (game.Settings, error) {
	base := game.SettingsFromConfig(cfg)
	entries, err := GetAllRuntimeConfig(db)
	if err != nil {
		return base, err
	}
	s, applied, err := ApplyOverrides(entries, base)
	if err != nil {
		return base, err
	}
	log.Printf("[CONFIG] Applied %d runtime config overrides from database", applied)
	return s, nil
}

// ApplyOverrides copies recognised entries onto base and returns the result
// with how many entries were used. The set is rejected as a whole if any
// value does not parse or the result fails validation.
func ApplyOverrides(entries []models.RuntimeConfig, base game.Settings) (game.Settings, int, error) {
	next := base
	applied := 0
	for _, c := range entries {
		var err error
		switch c.Key {
		case "field_width":
			next.FieldWidth, err = strconv.ParseFloat(c.Value, 64)
		case "field_height":
			next.FieldHeight, err = strconv.ParseFloat(c.Value, 64)
		case "paddle_speed":
			next.PaddleSpeed, err = strconv.ParseFloat(c.Value, 64)
		case "stand_count":
			next.StandCount, err = strconv.Atoi(c.Value)
		case "spectators_per_stand":
			next.SpectatorsPerStand, err = strconv.Atoi(c.Value)
		case "tick_rate":
			next.TickRate, err = strconv.Atoi(c.Value)
		default:
			continue
		}
		if err != nil {
			return base, 0, fmt.Errorf("%s: invalid value %q", c.Key, c.Value)
		}
		applied++
	}

	if err := next.Validate(); err != nil {
		return base, 0, err
	}
	return next, applied, nil
}
