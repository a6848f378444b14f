package config

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a parameter that cannot be used as given.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the invariants both engines rely on. Values are never
// coerced; the first violation is returned.
func (c *Config) Validate() error {
	if err := c.Dungeon.Validate(); err != nil {
		return err
	}
	if err := c.Task.Validate(); err != nil {
		return err
	}
	switch c.Storage.Driver {
	case "sqlite", "postgres":
	default:
		return invalid("storage.driver", "unknown driver %q", c.Storage.Driver)
	}
	if c.Bridge.MaxMessageSize < 0 || c.Bridge.MaxConnections < 0 || c.Bridge.MaxPerIP < 0 {
		return invalid("bridge", "limits must not be negative")
	}
	return nil
}

// Validate checks the dungeon section.
func (d *DungeonConfig) Validate() error {
	if d.Width < 1 || d.Height < 1 {
		return invalid("dungeon.width/height", "maze must be at least 1x1, got %dx%d", d.Width, d.Height)
	}
	if d.TTL.Duration <= 0 {
		return invalid("dungeon.ttl", "must be positive, got %s", d.TTL.Duration)
	}
	if d.FreeZone == 0 {
		return invalid("dungeon.free_zone", "zero is the non-walkable marker")
	}
	return nil
}

// Validate checks the task section.
func (t *TaskConfig) Validate() error {
	if len(t.Levels) == 0 {
		return invalid("task.levels", "at least one level is required")
	}
	if len(t.Credits) != len(t.Levels) {
		return invalid("task.credits", "ladder has %d entries but there are %d levels", len(t.Credits), len(t.Levels))
	}
	for i := 1; i < len(t.Credits); i++ {
		if t.Credits[i] <= t.Credits[i-1] {
			return invalid("task.credits", "ladder must be strictly ascending at index %d (%d <= %d)", i, t.Credits[i], t.Credits[i-1])
		}
	}
	if t.Credits[0] <= 0 {
		return invalid("task.credits", "first threshold must be positive")
	}
	if len(t.Types) != 3 {
		return invalid("task.types", "exactly 3 labels are required (item, enemy, npc), got %d", len(t.Types))
	}
	if len(t.NameTemplates) == 0 {
		return invalid("task.name_templates", "at least one template is required")
	}
	if strings.TrimSpace(t.MapMark) == "" {
		return invalid("task.map_mark", "must not be empty")
	}
	if !(t.UpRateMax > 1) {
		return invalid("task.up_rate_max", "must be greater than 1, got %v", t.UpRateMax)
	}
	if t.MaxPartyLevel <= 0 {
		return invalid("task.max_party_level", "must be positive, got %v", t.MaxPartyLevel)
	}
	if t.LevelScope <= 0 || t.TypeScope <= 0 {
		return invalid("task.level_scope/type_scope", "scopes must be positive")
	}
	if t.MaxNameRetries < 1 {
		return invalid("task.max_name_retries", "must be at least 1, got %d", t.MaxNameRetries)
	}
	if t.TroopID < 1 {
		return invalid("task.troop_id", "must be a troop id, got %d", t.TroopID)
	}
	return nil
}
