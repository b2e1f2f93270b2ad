// File: cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/linkedin-mcp/internal/config"
	"github.com/xkilldash9x/linkedin-mcp/internal/observability"
	"github.com/xkilldash9x/linkedin-mcp/internal/service"
)

type contextKey string

const (
	configKey = contextKey("config")
	envPrefix = "LINKEDIN_MCP"
)

// newComponentFactory is replaced in tests to avoid launching a browser.
var newComponentFactory = service.NewComponentFactory

// rootFlags holds the persistent overrides that win over file and env.
type rootFlags struct {
	cfgFile    string
	bridge     bool
	bridgeURL  string
	noFallback bool
	headless   bool
}

// NewRootCommand returns a fresh root command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

// newRootCmd also exposes the loaded configuration so tests can inspect it.
func newRootCmd() (*cobra.Command, *config.Interface) {
	var (
		flags  rootFlags
		appCfg config.Interface
	)

	cmd := &cobra.Command{
		Use:           "linkedin-mcp",
		Short:         "LinkedIn tools backed by a browser bridge or a local Chrome.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			if err := initializeConfig(v, flags.cfgFile); err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "linkedin-mcp"})
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "linkedin-mcp"})
				return fmt.Errorf("failed to load or validate config: %w", err)
			}
			if err := applyFlagOverrides(cmd, cfg, flags); err != nil {
				return err
			}

			observability.InitializeLogger(cfg.Logger())
			observability.GetLogger().Debug("Configuration loaded.",
				zap.String("version", Version),
				zap.Bool("bridge_enabled", cfg.Bridge().Enabled),
				zap.String("bridge_url", cfg.Bridge().URL),
			)

			appCfg = cfg
			cmd.SetContext(context.WithValue(cmd.Context(), configKey, config.Interface(cfg)))
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	pf.BoolVar(&flags.bridge, "bridge", false, "route sessions through the browser bridge")
	pf.StringVar(&flags.bridgeURL, "bridge-url", "", "base URL of the browser bridge")
	pf.BoolVar(&flags.noFallback, "no-fallback", false, "fail instead of falling back to a local browser")
	pf.BoolVar(&flags.headless, "headless", true, "run the local browser headless")
	cmd.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newBridgeCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd, &appCfg
}

// Execute runs the root command with the signal-aware context from main.
func Execute(ctx context.Context) error {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			observability.GetLogger().Error("Command execution failed", zap.Error(err))
		}
		return err
	}
	return nil
}

// initializeConfig reads the config file and environment into v.
func initializeConfig(v *viper.Viper, cfgFile string) error {
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
	}
	return nil
}

// applyFlagOverrides copies explicitly set flags onto cfg and revalidates.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config, flags rootFlags) error {
	changed := cmd.Flags().Changed
	if changed("bridge") {
		cfg.SetBridgeEnabled(flags.bridge)
	}
	if changed("bridge-url") {
		cfg.SetBridgeURL(flags.bridgeURL)
	}
	if changed("no-fallback") {
		cfg.SetBridgeFallback(!flags.noFallback)
	}
	if changed("headless") {
		cfg.SetBrowserHeadless(flags.headless)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flag combination: %w", err)
	}
	return nil
}

// getConfigFromContext retrieves the configuration stored by the root command.
func getConfigFromContext(ctx context.Context) (config.Interface, error) {
	cfg, ok := ctx.Value(configKey).(config.Interface)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not found in context")
	}
	return cfg, nil
}

// withComponents builds the components, runs fn, and shuts them down.
func withComponents(cmd *cobra.Command, fn func(ctx context.Context, c *service.Components) error) error {
	ctx := cmd.Context()
	cfg, err := getConfigFromContext(ctx)
	if err != nil {
		return err
	}

	components, err := newComponentFactory().Create(cfg, observability.GetLogger())
	if err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	defer components.Shutdown()

	return fn(ctx, components)
}
