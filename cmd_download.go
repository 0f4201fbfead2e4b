package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/marcus-crane/depotfinder/depotdownloader"
)

func newDownloadCmd(a *app) *cobra.Command {
	var manifestID, branch string

	cmd := &cobra.Command{
		Use:   "download [game name]",
		Short: "Resolve a game and download its depot with DepotDownloader.",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := a.gameName(args)
			if err != nil {
				return err
			}
			res, err := a.resolve(cmd, name)
			if err != nil {
				return err
			}
			a.printResolution(res)

			creds, err := a.credentialManager().GetOrPrompt()
			if err != nil {
				return fmt.Errorf("get credentials: %w", err)
			}

			err = a.depotDownloader().Download(cmd.Context(), depotdownloader.Request{
				AppID:            res.AppID,
				DepotID:          res.DepotID,
				ManifestID:       manifestID,
				Branch:           branch,
				RememberPassword: true,
				Credentials:      creds,
			})
			if err != nil {
				return err
			}
			slog.Info("Download complete",
				slog.String("app_id", res.AppID),
				slog.String("depot_id", res.DepotID),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&manifestID, "manifest", "", "download a specific manifest instead of the latest")
	cmd.Flags().StringVar(&branch, "branch", "", "download from a beta branch")
	return cmd
}
