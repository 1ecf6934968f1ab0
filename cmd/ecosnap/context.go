package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Akshith040/EcoScan1/internal/config"
	"github.com/Akshith040/EcoScan1/internal/logging"
)

// commandContext loads configuration and the logger once, on first use, so
// commands that need neither (guide, help) never touch the environment.
type commandContext struct {
	promptsFlag *string
	openLogger  func(level, logFile string) (*slog.Logger, func(), error)

	once    sync.Once
	config  *config.Config
	logger  *slog.Logger
	cleanup func()
	err     error
}

func newCommandContext(promptsFlag *string) *commandContext {
	return &commandContext{promptsFlag: promptsFlag, openLogger: logging.New, cleanup: func() {}}
}

func (c *commandContext) ensure() (*config.Config, *slog.Logger, error) {
	c.once.Do(func() {
		cfg := config.Load()
		if c.promptsFlag != nil && strings.TrimSpace(*c.promptsFlag) != "" {
			cfg.PromptsFile = strings.TrimSpace(*c.promptsFlag)
		}

		logger, cleanup, err := c.openLogger(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			c.err = fmt.Errorf("failed to initialize logger: %w", err)
			return
		}
		c.config, c.logger, c.cleanup = cfg, logger, cleanup
	})
	return c.config, c.logger, c.err
}

func (c *commandContext) close() {
	c.cleanup()
}
