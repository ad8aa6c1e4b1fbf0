package main

import (
	"time"

	"mpdharvest/internal/config"
	"mpdharvest/internal/dash"
	"mpdharvest/internal/logger"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds the state shared by all commands of one invocation.
type app struct {
	fs         afero.Fs
	v          *viper.Viper
	configPath string

	cfg *config.Config
	log logger.Logger
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs, v: config.NewViper(fs)}

	root := &cobra.Command{
		Use:          "mpdharvest",
		Short:        "Resolve MPEG-DASH manifests into segment URLs and download them",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to a config file (toml, yaml or json)")
	flags.StringP("log-level", "L", "info", "Log level (error, warn, info, debug)")
	flags.Bool("log-json", false, "Write logs as JSON")
	flags.StringP("user-agent", "A", "", "User-Agent header sent with every request")
	flags.Duration("timeout", 30*time.Second, "Timeout waiting for response headers")
	lo.Must0(a.v.BindPFlag(config.LogLevel, flags.Lookup("log-level")))
	lo.Must0(a.v.BindPFlag(config.LogJSON, flags.Lookup("log-json")))
	lo.Must0(a.v.BindPFlag(config.HTTPUserAgent, flags.Lookup("user-agent")))
	lo.Must0(a.v.BindPFlag(config.HTTPTimeout, flags.Lookup("timeout")))

	root.AddCommand(a.newURLsCmd(), a.newDownloadCmd(), a.newServeCmd())
	return root
}

func (a *app) newClient() *dash.Client {
	return dash.NewClient(a.log, a.cfg.HTTP.UserAgent, a.cfg.HTTP.Timeout)
}

func (a *app) newSegmentDownloader(client *dash.Client) *dash.SegmentDownloader {
	d := dash.NewSegmentDownloader(client.HttpClient(), a.log, a.cfg.HTTP.UserAgent)
	d.MaxRetries = a.cfg.Download.Retries
	d.RetryDelay = a.cfg.Download.RetryDelay
	d.RequestTimeout = a.cfg.HTTP.Timeout
	return d
}
