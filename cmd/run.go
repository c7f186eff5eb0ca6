package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/driftbyte/loiter-cli/internal/behavior"
	"github.com/driftbyte/loiter-cli/internal/browser"
	"github.com/driftbyte/loiter-cli/internal/browser/stealth"
	"github.com/driftbyte/loiter-cli/internal/config"
	"github.com/driftbyte/loiter-cli/internal/observability"
)

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Runs a browsing session against the configured target",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their viper keys so command-line values override
			// the config file and environment with the right precedence.
			bindings := map[string]string{
				"session.target_url":       "url",
				"session.duration_minutes": "duration",
				"session.timezone":         "timezone",
				"session.locale":           "locale",
				"session.user_agent":       "user-agent",
				"browser.headless":         "headless",
			}
			for key, flag := range bindings {
				if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Use the context passed from main (signal-aware).
			ctx := cmd.Context()

			cfg, err := config.New(viper.GetViper())
			if err != nil {
				return err
			}

			sessionID := uuid.New().String()
			logger := observability.GetLogger().With(zap.String("session_id", sessionID))

			userAgent := cfg.Session.UserAgent
			if userAgent == "" {
				userAgent = browser.RandomUserAgent(nil)
				logger.Debug("No user agent configured; picked one.", zap.String("user_agent", userAgent))
			}
			persona := stealth.NewPersona(userAgent,
				browser.PlatformFor(userAgent), cfg.Session.Timezone, cfg.Session.Locale)

			logger.Info("Starting browsing session",
				zap.String("target_url", cfg.Session.TargetURL),
				zap.Int("duration_minutes", cfg.Session.DurationMinutes),
				zap.String("timezone", persona.Timezone),
				zap.String("locale", persona.Locale),
			)

			driver, err := browser.NewDriver(ctx, cfg, persona, logger)
			if err != nil {
				return fmt.Errorf("failed to start browser: %w", err)
			}

			loop := behavior.New(behavior.Config{
				TargetURL: cfg.Session.TargetURL,
				Duration:  cfg.Session.Duration(),
			}, driver, logger)

			started := time.Now()
			rounds, err := loop.Run(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Warn("Session aborted gracefully",
						zap.Int("rounds", rounds),
						zap.Duration("elapsed", time.Since(started).Round(time.Second)))
				}
				return err
			}

			logger.Info("Session complete",
				zap.Int("rounds", rounds),
				zap.Duration("elapsed", time.Since(started).Round(time.Second)))
			return nil
		},
	}

	runCmd.Flags().StringP("url", "u", "", "Target URL to visit. (Overrides config/env)")
	runCmd.Flags().IntP("duration", "d", 0, "Session duration in minutes. (Overrides config/env)")
	runCmd.Flags().String("timezone", "", "IANA timezone to present. (Overrides config/env)")
	runCmd.Flags().String("locale", "", "BCP 47 locale to present. (Overrides config/env)")
	runCmd.Flags().String("user-agent", "", "User agent to present; random when unset. (Overrides config/env)")
	runCmd.Flags().Bool("headless", false, "Run the browser without a visible window. (Overrides config/env)")

	return runCmd
}
