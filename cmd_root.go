package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "depotfinder",
		Short:         "Find the Steam app and depot for a game and download it with DepotDownloader.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.AddCommand(
		newResolveCmd(a),
		newDownloadCmd(a),
		newManifestCmd(a),
		newManifestsCmd(a),
		newCacheCmd(a),
	)
	return root
}
