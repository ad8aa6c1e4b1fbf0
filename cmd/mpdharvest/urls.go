package main

import (
	"fmt"

	"mpdharvest/internal/dash"
	"mpdharvest/internal/harvest"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func (a *app) newURLsCmd() *cobra.Command {
	var (
		file        string
		format      string
		diagnostics bool
	)

	cmd := &cobra.Command{
		Use:   "urls <manifest-url>",
		Short: "Print the segment URLs of a manifest",
		Long: "Print the segment URLs of a manifest, one per line.\n\n" +
			"The manifest is fetched from <manifest-url>, or read from --file in which case\n" +
			"<manifest-url> only serves as the base for relative segment URLs.\n\n" +
			"--format placeholders: {index} {url} {rep} {bandwidth} {number} {time} {kind}",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifestURL := args[0]

			var data []byte
			var err error
			if file != "" {
				data, err = afero.ReadFile(a.fs, file)
				if err != nil {
					return fmt.Errorf("reading manifest: %w", err)
				}
			} else {
				data, manifestURL, err = a.newClient().FetchManifest(cmd.Context(), manifestURL)
				if err != nil {
					return err
				}
			}

			res, err := dash.GetFragmentURLs(data, manifestURL, a.log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, seg := range res.Segments {
				fmt.Fprintln(out, harvest.FormatLine(format, i, seg))
			}
			if diagnostics {
				for _, d := range res.Diagnostics {
					fmt.Fprintln(cmd.ErrOrStderr(), d)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the manifest from this file instead of fetching it")
	cmd.Flags().StringVar(&format, "format", harvest.DefaultLineFormat, "Output line template")
	cmd.Flags().BoolVarP(&diagnostics, "diagnostics", "d", false, "Print diagnostics to stderr")
	return cmd
}
