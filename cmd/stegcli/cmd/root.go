package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/steg/config"
)

const defaultConfigFilename = "steg.toml"

var (
	Version string
	Commit  string

	cfgFile  string
	logLevel string

	cfg    = config.DefaultConfig()
	logger = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "stegcli",
	Short: "Picture secret steganography encoder/decoder",
	Long: `stegcli hides files in the least-significant bits of images and recovers them.

The number of bits used per image byte (-b) must be the same when encoding and
decoding, otherwise the output will be garbage. Always save to a lossless format
(png, bmp, tiff); jpeg and gif compression destroys the secret.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		return initLogger()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (%s)", Version, Commit)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", fmt.Sprintf("path to a configuration file (toml, yaml or json; default %v)", defaultConfigFile()))
	flags.StringVar(&logLevel, "logLevel", zapcore.InfoLevel.String(), "log level (debug, info, warn, error, dpanic, panic, fatal)")

	flags.UintP("bits", "b", cfg.Bits, "number of least-significant bits of every image byte used to hide the secret")
	flags.Bool("disable-space-checks", cfg.DisableSpaceAvailabilityChecks, "skip the free disk space check before writing the output image")
}

// defaultConfigFile lives in the per-user application data directory.
func defaultConfigFile() string {
	return filepath.Join(btcutil.AppDataDir("steg", false), defaultConfigFilename)
}

// loadConfig builds the config from, in increasing priority: defaults, the
// configuration file, STEG_* environment variables and command line flags.
// Without --config the default configuration file is used if it exists.
func loadConfig(cmd *cobra.Command) error {
	vip := viper.New()
	vip.SetEnvPrefix("steg")
	vip.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vip.AutomaticEnv()

	defaults := config.DefaultConfig()
	vip.SetDefault("bits", defaults.Bits)
	vip.SetDefault("disable-space-checks", defaults.DisableSpaceAvailabilityChecks)

	configFile := cfgFile
	if configFile == "" {
		if _, err := os.Stat(defaultConfigFile()); err == nil {
			configFile = defaultConfigFile()
		}
	}
	if configFile != "" {
		vip.SetConfigFile(configFile)
		if err := vip.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for _, name := range []string{"bits", "disable-space-checks"} {
		if err := vip.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return err
		}
	}

	loaded := config.DefaultConfig()
	if err := vip.Unmarshal(&loaded); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	cfg = loaded
	return nil
}

func initLogger() error {
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	zapCfg := zap.Config{
		Level:    zap.NewAtomicLevelAt(level),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "T",
			LevelKey:       "L",
			NameKey:        "N",
			MessageKey:     "M",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	l, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize zap logger: %w", err)
	}
	logger = l.Named("stegcli")
	return nil
}
