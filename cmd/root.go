// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ebay-flow/internal/config"
	"github.com/xkilldash9x/ebay-flow/internal/observability"
)

// ctxKey is the type of keys this package stores in a command's context.
type ctxKey string

const configKey ctxKey = "config"

// sessionLogAnnotation marks commands that write a per-run session log.
const sessionLogAnnotation = "ebay-flow/session-log"

// envPrefix is prepended to every environment override, e.g.
// EBAYFLOW_FLOW_SEARCH_TERM.
const envPrefix = "EBAYFLOW"

var (
	cfgFile string
	envFile string
)

// fallbackLogger is used when the configuration could not be loaded at all.
var fallbackLogger = config.LoggerConfig{Level: "info", Format: "console", ServiceName: "ebay-flow"}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ebay-flow",
		Short: "Drives a browser through the eBay search and filter flow and reports on it.",
		// Version is set at build time. See cmd/version.go.
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command with ctx, which main makes signal-aware.
func Execute(ctx context.Context) error {
	defer observability.Sync()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, ErrRunFailed) {
			observability.GetLogger().Error("Command execution failed.", zap.Error(err))
		}
		return err
	}
	return nil
}

// loadConfig runs before every command. It builds the configuration, starts
// the logger, and stores the configuration in the command's context.
func loadConfig(cmd *cobra.Command, args []string) error {
	v := viper.New()
	config.SetDefaults(v)

	if err := initializeConfig(v); err != nil {
		observability.InitializeLogger(fallbackLogger)
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	cfg, err := config.NewConfigFromViper(v)
	if err != nil {
		observability.InitializeLogger(fallbackLogger)
		return fmt.Errorf("failed to load or validate config: %w", err)
	}

	if _, ok := cmd.Annotations[sessionLogAnnotation]; ok {
		cfg.LoggerCfg.LogFile = observability.RunLogPath(cfg.ArtifactsCfg.LogsDir, time.Now())
	}

	observability.InitializeLogger(cfg.Logger())
	observability.GetLogger().Debug("Configuration loaded.",
		zap.String("version", Version),
		zap.String("command", cmd.Name()),
		zap.String("config_file", v.ConfigFileUsed()),
	)

	cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
	return nil
}

// initializeConfig loads the dotenv file, then reads the config file and
// environment into v.
func initializeConfig(v *viper.Viper) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error loading env file %s: %w", envFile, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and environment apply.
	}
	return nil
}

func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("configuration not found in command context")
	}
	return cfg, nil
}
