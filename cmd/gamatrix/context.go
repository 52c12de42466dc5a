package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gamatrix/internal/config"
	"gamatrix/internal/gogdb"
	"gamatrix/internal/igdb"
	"gamatrix/internal/igdbcache"
	"gamatrix/internal/logging"
	"gamatrix/internal/reconcile"
	"gamatrix/internal/slug"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logOnce sync.Once
	log     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *slog.Logger {
	c.logOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.log = logging.NewNop()
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			c.log = logging.NewNop()
			return
		}
		c.log = logger
		slug.SetLogger(logger)
	})
	return c.log
}

func (c *commandContext) openCache() (*igdbcache.Document, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return igdbcache.Load(cfg.Paths.CachePath, c.logger())
}

// metadataClient builds an authenticated IGDB client. A failed token fetch
// is fatal: running without metadata would silently misclassify everything.
func (c *commandContext) metadataClient(ctx context.Context, cache *igdbcache.Document, refresh bool) (*igdb.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateIGDB(); err != nil {
		return nil, err
	}

	client, err := igdb.New(cfg.IGDB.ClientID, cfg.IGDB.ClientSecret, cache, c.logger(),
		igdb.WithAPIBaseURL(cfg.IGDB.APIBaseURL),
		igdb.WithAuthURL(cfg.IGDB.AuthBaseURL),
		igdb.WithRequestDelay(time.Duration(cfg.IGDB.RequestDelayMS)*time.Millisecond),
		igdb.WithForceRefresh(refresh),
	)
	if err != nil {
		return nil, err
	}
	if !client.Authenticate(ctx) {
		return nil, errAuthFailed
	}
	return client, nil
}

// openLibraries opens one Galaxy database per user. The returned cleanup
// closes everything opened so far even when this function fails.
func (c *commandContext) openLibraries(ctx context.Context, userIDs []int64) ([]reconcile.Library, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, func() {}, err
	}

	var dbs []*gogdb.DB
	closeAll := func() {
		for _, db := range dbs {
			db.Close()
		}
	}

	libs := make([]reconcile.Library, 0, len(userIDs))
	for _, id := range userIDs {
		user, ok := cfg.UserByID(id)
		if !ok {
			closeAll()
			return nil, func() {}, unknownUserError(id)
		}
		db, err := gogdb.Open(ctx, cfg.DBPath(user), c.logger())
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		dbs = append(dbs, db)
		libs = append(libs, db)
	}
	return libs, closeAll, nil
}

func (c *commandContext) allUserIDs() []int64 {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil
	}
	ids := make([]int64, 0, len(cfg.Users))
	for _, u := range cfg.Users {
		ids = append(ids, u.ID)
	}
	return ids
}
