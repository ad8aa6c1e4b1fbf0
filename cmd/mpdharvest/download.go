package main

import (
	"fmt"

	"mpdharvest/internal/config"
	"mpdharvest/internal/harvest"
	"mpdharvest/internal/storage"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func (a *app) newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <manifest-url>",
		Short: "Download a manifest and all of its segments",
		Long: "Download a manifest and all of its segments into the output directory.\n" +
			"Segment paths mirror the URL below the manifest's directory. Files that\n" +
			"already exist are skipped, so an interrupted run can be resumed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := a.newClient()
			h := harvest.New(
				client,
				a.newSegmentDownloader(client),
				storage.New(a.fs, a.cfg.Output.Directory),
				a.log,
				a.cfg.Download.Workers,
			)

			a.log.Infof("url %s", args[0])
			summary, err := h.Run(cmd.Context(), args[0])
			if summary != nil {
				a.log.Infof("%d segments: %d downloaded, %d skipped, %d failed, %d outside base url",
					summary.Total, summary.Downloaded, summary.Skipped, summary.Failed, summary.Foreign)
			}
			if err != nil {
				return err
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d segments failed to download", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "harvest", "Output folder to store files")
	cmd.Flags().IntP("workers", "w", 4, "Number of parallel segment downloads")
	lo.Must0(a.v.BindPFlag(config.OutputDirectory, cmd.Flags().Lookup("output")))
	lo.Must0(a.v.BindPFlag(config.DownloadWorkers, cmd.Flags().Lookup("workers")))
	return cmd
}
