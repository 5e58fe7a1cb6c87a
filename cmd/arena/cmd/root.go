package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/picogrid/tank-arena/pkg/config"
	"github.com/picogrid/tank-arena/pkg/logger"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tank-arena",
	Short: "Scriptable tank battle arena",
	Long: `Tank Arena runs battles between programmable tanks. Each tank is
driven by a JavaScript brain or a built-in strategy that is asked for an
action every tick. Run "serve" for the HTTP and WebSocket server or
"battle" for a headless match in the terminal.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is arena.yaml, config.yaml or configs/arena.yaml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")
	flags.Bool("no-color", false, "disable colored output")

	for _, name := range []string{"config", "log-level", "log-format", "no-color"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(battleCmd)
	rootCmd.AddCommand(brainsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// initConfig applies the global logging flags and binds ARENA_* variables
func initConfig() {
	viper.SetEnvPrefix("ARENA")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if level := viper.GetString("log-level"); level != "" {
		logger.SetLevel(logger.ParseLevel(level))
	}
	if viper.GetBool("no-color") {
		logger.SetNoColor(true)
	}
}

// loadConfig resolves the configuration from file, environment, global
// flags and the command's own overrides, then reconfigures the logger
func loadConfig(overrides map[string]interface{}) (*config.Config, error) {
	merged := map[string]interface{}{}
	if level := viper.GetString("log-level"); level != "" {
		merged["log_level"] = level
	}
	if format := viper.GetString("log-format"); format != "" {
		merged["log_format"] = format
	}
	if viper.GetBool("no-color") {
		merged["no_color"] = true
	}
	for k, v := range overrides {
		merged[k] = v
	}

	cfg, err := config.LoadConfigWithOverrides(viper.GetString("config"), merged)
	if err != nil {
		return nil, err
	}

	logger.Configure(cfg.Logging.LoggerConfig())
	return cfg, nil
}

// changedOverrides collects the named flags the user actually set, keyed
// for config.MergeWithCLIOverrides
func changedOverrides(cmd *cobra.Command, keys map[string]string) map[string]interface{} {
	overrides := map[string]interface{}{}
	flags := cmd.Flags()
	for flag, key := range keys {
		if !flags.Changed(flag) {
			continue
		}
		f := flags.Lookup(flag)
		switch f.Value.Type() {
		case "int":
			v, _ := flags.GetInt(flag)
			overrides[key] = v
		case "duration":
			v, _ := flags.GetDuration(flag)
			overrides[key] = v
		case "bool":
			v, _ := flags.GetBool(flag)
			overrides[key] = v
		default:
			overrides[key] = f.Value.String()
		}
	}
	return overrides
}
