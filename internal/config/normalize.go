package config

import (
	"fmt"
	"net"
	"os"
	"strings"

	"gamatrix/internal/slug"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeIGDB(); err != nil {
		return err
	}
	if err := c.normalizeServer(); err != nil {
		return err
	}
	if err := c.normalizeUsers(); err != nil {
		return err
	}
	c.normalizeOverrides()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DBDir, err = expandPath(c.Paths.DBDir); err != nil {
		return fmt.Errorf("paths.db_dir: %w", err)
	}
	if c.Paths.CachePath, err = expandPath(c.Paths.CachePath); err != nil {
		return fmt.Errorf("paths.cache_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeIGDB() error {
	if c.IGDB.ClientID == "" {
		if value, ok := os.LookupEnv("IGDB_CLIENT_ID"); ok {
			c.IGDB.ClientID = strings.TrimSpace(value)
		}
	}
	if c.IGDB.ClientSecret == "" {
		if value, ok := os.LookupEnv("IGDB_CLIENT_SECRET"); ok {
			c.IGDB.ClientSecret = strings.TrimSpace(value)
		}
	}
	c.IGDB.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.IGDB.APIBaseURL), "/")
	if c.IGDB.APIBaseURL == "" {
		c.IGDB.APIBaseURL = defaultIGDBAPIBaseURL
	}
	c.IGDB.AuthBaseURL = strings.TrimSpace(c.IGDB.AuthBaseURL)
	if c.IGDB.AuthBaseURL == "" {
		c.IGDB.AuthBaseURL = defaultIGDBAuthURL
	}
	if c.IGDB.RequestDelayMS <= 0 {
		c.IGDB.RequestDelayMS = defaultIGDBRequestDelayMS
	}
	return nil
}

func (c *Config) normalizeServer() error {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	networks, err := parseCIDRs(c.Server.AllowedCIDRs)
	if err != nil {
		return fmt.Errorf("server.allowed_cidrs: %w", err)
	}
	c.Server.AllowedNetworks = networks
	return nil
}

func (c *Config) normalizeUsers() error {
	for i := range c.Users {
		c.Users[i].Username = strings.TrimSpace(c.Users[i].Username)
		networks, err := parseCIDRs(c.Users[i].CIDRs)
		if err != nil {
			return fmt.Errorf("users[%d].cidrs: %w", i, err)
		}
		c.Users[i].Networks = networks
	}
	return nil
}

// normalizeOverrides slugs the hidden list and the metadata override keys so
// free-text titles in the config file match normalized entries.
func (c *Config) normalizeOverrides() {
	for i := range c.Hidden {
		c.Hidden[i] = slug.Make(c.Hidden[i])
	}

	slugged := make(map[string]Override, len(c.Metadata))
	for title, override := range c.Metadata {
		slugged[slug.Make(title)] = override
	}
	c.Metadata = slugged
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func parseCIDRs(cidrs []string) ([]*net.IPNet, error) {
	if len(cidrs) == 0 {
		return nil, nil
	}
	networks := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(strings.TrimSpace(cidr))
		if err != nil {
			return nil, fmt.Errorf("parse CIDR %q: %w", cidr, err)
		}
		networks = append(networks, network)
	}
	return networks, nil
}
