// Package cli provides the Cobra-based command line of the petsupplies server.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/egannguyen/petsupplies/internal/config"
	"github.com/egannguyen/petsupplies/internal/logging"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

type root struct {
	v         *viper.Viper
	cfg       config.Config
	logCloser io.Closer
}

// NewRootCommand builds the command tree. Each call has its own viper instance.
func NewRootCommand() *cobra.Command {
	r := &root{v: config.NewViper()}

	cmd := &cobra.Command{
		Use:           "petsupplies",
		Short:         "Pet supplies storefront API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(r.v, cfgFile)
			if err != nil {
				return err
			}
			r.cfg = cfg

			closer, err := logging.Init(logging.Options{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
				File:   cfg.Log.File,
			})
			if err != nil {
				return err
			}
			r.logCloser = closer
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if r.logCloser != nil {
				return r.logCloser.Close()
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("log-level", "info", "log level: debug|info|warn|error")
	flags.String("log-format", "text", "log format: text|json")
	flags.String("store", "memory", "catalog and order store: memory|postgres")
	flags.String("database-url", "", "postgres connection string")
	flags.String("cart-store", "memory", "cart store: memory|file|redis|sqlite")
	flags.String("broker", "channel", "event broker: channel|kafka")

	for key, flag := range map[string]string{
		"log.level":     "log-level",
		"log.format":    "log-format",
		"store.driver":  "store",
		"database.url":  "database-url",
		"cart.store":    "cart-store",
		"broker.driver": "broker",
	} {
		mustBindFlag(r.v, key, flags, flag)
	}

	cmd.AddCommand(r.serveCommand(), r.seedCommand(), versionCommand())
	return cmd
}

// mustBindFlag binds a registered flag to a config key. A failure is a
// programming error in the command tree, so it panics at construction.
func mustBindFlag(v *viper.Viper, key string, flags *pflag.FlagSet, name string) {
	flag := flags.Lookup(name)
	if flag == nil {
		panic(fmt.Sprintf("cli: flag --%s is not registered", name))
	}
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("cli: failed to bind --%s to %s: %v", name, key, err))
	}
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}
