package config

import (
	"errors"
	"fmt"

	"github.com/hankstank/mlb-data/internal/model"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if err := c.Database.Postgres.validate("database.postgres"); err != nil {
		return err
	}

	if c.Seasons.First < 1900 {
		return fmt.Errorf("seasons.first must be a plausible year, got %d", c.Seasons.First)
	}
	if c.Seasons.RolloverMonth < 1 || c.Seasons.RolloverMonth > 12 {
		return fmt.Errorf("seasons.rollover_month must be between 1 and 12, got %d", c.Seasons.RolloverMonth)
	}

	for _, name := range c.Syncer.Entities {
		e, err := model.ParseEntityType(name)
		if err != nil {
			return fmt.Errorf("syncer.entities: %w", err)
		}
		if !e.Mirrored() {
			return fmt.Errorf("syncer.entities: %q is not mirrored in the historical store", name)
		}
	}

	if c.Backup.QueueSize < 1 {
		return errors.New("backup.queue_size must be >= 1")
	}
	if c.Backup.Workers < 1 {
		return errors.New("backup.workers must be >= 1")
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
