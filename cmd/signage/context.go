package main

import (
	"fmt"
	"strings"
	"sync"

	"signage_server/config"
	"signage_server/internal/db"
	"signage_server/internal/logging"
	"signage_server/internal/repository"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	logger     *zap.Logger
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// ensureConfig loads .env, the TOML overlay and the environment once, then builds the logger
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		// a missing .env is fine; the process environment is used as is
		_ = godotenv.Load()

		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = fmt.Errorf("invalid configuration: %w", err)
			return
		}
		if err := config.InitializeTimezone(cfg.Timezone); err != nil {
			c.configErr = err
			return
		}
		logger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, logging.ServiceName)
		if err != nil {
			c.configErr = fmt.Errorf("create logger: %w", err)
			return
		}
		c.config = cfg
		c.logger = logger
	})
	return c.config, c.configErr
}

// openStore connects to PostgreSQL and migrates the schema. The returned func closes the pool.
func (c *commandContext) openStore(migrate bool) (repository.Store, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := db.Close(conn); err != nil {
			c.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	if migrate {
		if err := db.RunMigrations(conn); err != nil {
			closeFn()
			return nil, nil, err
		}
	}
	return repository.NewGormStore(conn), closeFn, nil
}
