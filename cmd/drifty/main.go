package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"drifty/config"
	"drifty/internal/authstate"
	"drifty/internal/session"
	"drifty/internal/ui"
	"drifty/pkg/logger"
	"drifty/pkg/profilestore"
	"drifty/pkg/sms"
	"drifty/pkg/uniqueness"
	"drifty/pkg/verify"
	storageredis "drifty/storage/redis"
)

// needsRedis reports whether any configured backend reaches redis.
func needsRedis() bool {
	return config.Cfg.VerifyProvider == "hosted" || config.Cfg.ProfileStore == "redis"
}

func main() {
	logger.Init()
	defer logger.Sync()

	if needsRedis() {
		if err := storageredis.Init(); err != nil {
			logger.Logger.Fatal("Failed to initialize redis", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := storageredis.Close(ctx); err != nil {
				logger.Logger.Error("Failed to close redis", zap.Error(err))
			}
		}()
	}

	if err := sms.Init(); err != nil {
		logger.Logger.Warn("Failed to initialize SMS service", zap.Error(err))
		logger.Logger.Info("SMS service will be disabled, codes cannot be delivered")
	}

	if err := verify.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize verification", zap.Error(err))
	}

	if err := profilestore.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize profile store", zap.Error(err))
	}

	if err := uniqueness.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize uniqueness checker", zap.Error(err))
	}

	provider := authstate.NewProvider()
	controller := session.NewController(
		provider,
		profilestore.GetStore(),
		uniqueness.GetChecker(),
		session.WithSettleDelay(time.Duration(config.Cfg.SettleDelayMillis)*time.Millisecond),
		session.WithUsernameDebounce(time.Duration(config.Cfg.UsernameDebounceMillis)*time.Millisecond),
	)
	controller.Start()
	defer controller.Stop()

	model, err := ui.New(controller, provider, verify.GetClient())
	if err != nil {
		logger.Logger.Fatal("Failed to build UI", zap.Error(err))
	}

	logger.Logger.Info("Client starting",
		zap.String("service", config.Cfg.ServiceName),
		zap.String("environment", config.Cfg.Environment),
		zap.String("verify_provider", config.Cfg.VerifyProvider),
		zap.String("profile_store", config.Cfg.ProfileStore),
	)

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logger.Logger.Error("UI terminated with error", zap.Error(err))
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
