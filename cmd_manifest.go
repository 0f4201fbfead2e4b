package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/marcus-crane/depotfinder/shared"
	"github.com/marcus-crane/depotfinder/steamdb"
)

func newManifestCmd(a *app) *cobra.Command {
	var appID, depotID, branch string

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Fetch the current manifest of a depot without downloading its content.",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := a.credentialManager().GetOrPrompt()
			if err != nil {
				return fmt.Errorf("get credentials: %w", err)
			}
			out, err := a.depotDownloader().FetchManifest(cmd.Context(), appID, depotID, branch, creds)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&appID, "app", "", "Steam app id")
	cmd.Flags().StringVar(&depotID, "depot", "", "Steam depot id")
	cmd.Flags().StringVar(&branch, "branch", shared.DEFAULT_BRANCH, "branch to read the manifest from")
	cmd.MarkFlagRequired("app")
	cmd.MarkFlagRequired("depot")
	return cmd
}

func newManifestsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "manifests DEPOT_ID",
		Short: "List the known manifest ids of a depot from SteamDB.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifests, err := steamdb.NewClient(a.cfg).ListManifests(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(manifests) == 0 {
				fmt.Fprintf(a.out, "No manifests found for depot %s\n", args[0])
				return nil
			}
			t := newTable(a.out)
			t.AppendHeader(table.Row{"#", "Manifest ID", "Date"})
			for i, m := range manifests {
				t.AppendRow(table.Row{i + 1, m.ID, m.Date})
			}
			t.Render()
			return nil
		},
	}
}
