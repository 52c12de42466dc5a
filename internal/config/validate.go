package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateUsers(); err != nil {
		return err
	}
	if err := c.validateOverrides(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateUsers() error {
	seen := make(map[int64]bool, len(c.Users))
	for i, u := range c.Users {
		if u.ID <= 0 {
			return fmt.Errorf("users[%d].id must be a positive GOG user ID", i)
		}
		if seen[u.ID] {
			return fmt.Errorf("users[%d].id %d is listed more than once", i, u.ID)
		}
		seen[u.ID] = true
		if u.DB == "" {
			return fmt.Errorf("users[%d].db must name the user's GOG Galaxy database file", i)
		}
	}
	return nil
}

func (c *Config) validateOverrides() error {
	for key, override := range c.Metadata {
		if override.MaxPlayers < 0 {
			return fmt.Errorf("metadata[%q].max_players must not be negative", key)
		}
	}
	return nil
}

// ValidateIGDB checks that credentials are present before external lookups.
// It is separate from Validate so offline commands work without credentials.
func (c *Config) ValidateIGDB() error {
	if c.IGDB.ClientID == "" || c.IGDB.ClientSecret == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/gamatrix/config.toml"
		}
		return errors.New("igdb.client_id and igdb.client_secret are required. " +
			"Set IGDB_CLIENT_ID/IGDB_CLIENT_SECRET env vars or edit " + defaultPath +
			" (create with 'gamatrix config init')")
	}
	return nil
}
