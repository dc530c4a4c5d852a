package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hrygo/planwise/internal/profile"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// newRootCommand builds the command tree. Flags are bound to a private viper instance
// that also reads PLANWISE_* environment variables.
func newRootCommand() *cobra.Command {
	v := profile.NewViper()

	rootCmd := &cobra.Command{
		Use:           "planwise",
		Short:         "Turn natural-language messages into tasks, events and goals",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "optional config file (yaml, json or toml)")
	flags.String("mode", "dev", `mode of the planner, "prod", "dev" or "demo"`)
	flags.String("data", ".", "data directory")
	flags.String("driver", "sqlite", `identity store driver, "sqlite", "postgres" or "none"`)
	flags.String("dsn", "", "identity store data source name")
	flags.String("fallback-dsn", "", "sqlite file of the anonymous fallback store")
	flags.String("timezone", "Local", `IANA time zone used for "today" and "tomorrow"`)
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address while running, e.g. :9090")
	flags.Bool("ai-enabled", false, "enable the completion service")
	flags.String("ai-llm-provider", "deepseek", `completion provider, "deepseek", "openai", "siliconflow" or "ollama"`)
	flags.String("ai-llm-model", "deepseek-chat", "completion model")
	flags.Float64("category-threshold", 0, "model confidence needed to skip keyword scoring (default 0.1)")

	mustBind(v, "config", flags.Lookup("config"))
	mustBind(v, "mode", flags.Lookup("mode"))
	mustBind(v, "data", flags.Lookup("data"))
	mustBind(v, "driver", flags.Lookup("driver"))
	mustBind(v, "dsn", flags.Lookup("dsn"))
	mustBind(v, "fallback_dsn", flags.Lookup("fallback-dsn"))
	mustBind(v, "timezone", flags.Lookup("timezone"))
	mustBind(v, "metrics_addr", flags.Lookup("metrics-addr"))
	mustBind(v, "ai.enabled", flags.Lookup("ai-enabled"))
	mustBind(v, "ai.llm_provider", flags.Lookup("ai-llm-provider"))
	mustBind(v, "ai.llm_model", flags.Lookup("ai-llm-model"))
	mustBind(v, "category.threshold", flags.Lookup("category-threshold"))

	rootCmd.AddCommand(
		newProcessCommand(v),
		newCategorizeCommand(v),
		newBackfillCommand(v),
		newVersionCommand(v),
	)
	return rootCmd
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// loadProfile reads and validates the profile and installs the default logger.
func loadProfile(v *viper.Viper) (*profile.Profile, error) {
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", file)
		}
	}

	p := &profile.Profile{}
	p.FromViper(v)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if p.IsDev() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Debug("profile loaded",
		slog.String("mode", p.Mode),
		slog.String("version", p.Version),
		slog.String("driver", p.Driver),
		slog.Bool("ai_enabled", p.IsAIEnabled()))
	return p, nil
}
