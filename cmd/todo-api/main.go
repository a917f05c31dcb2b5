package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"todo-api/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	v          *viper.Viper
	configPath string
	envFiles   []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: config.New()}

	root := &cobra.Command{
		Use:           "todo-api",
		Short:         "Todo list HTTP service",
		Long:          "todo-api serves a JSON API for creating, listing, updating, toggling and deleting todo items.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default ./todo-api.yaml if present)")
	flags.StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "dotenv files to load before reading the environment")
	flags.String("store", config.StoreMemory, "store backend: memory, file, sqlite, postgres or mongo")
	flags.String("addr", ":8080", "HTTP listen address")
	flags.String("log-level", "info", "log level: debug, info, warn or error")

	_ = opts.v.BindPFlag("store", flags.Lookup("store"))
	_ = opts.v.BindPFlag("http_addr", flags.Lookup("addr"))
	_ = opts.v.BindPFlag("log_level", flags.Lookup("log-level"))

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "ping",
			Short: "Open the configured store and check it is reachable",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPing(cmd, opts)
			},
		},
	)
	return root
}

func (o *rootOptions) load() (config.Config, error) {
	if err := config.LoadDotEnv(o.envFiles...); err != nil {
		return config.Config{}, err
	}
	if err := config.ReadFile(o.v, o.configPath); err != nil {
		return config.Config{}, err
	}
	return config.Load(o.v)
}
