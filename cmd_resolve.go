package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus-crane/depotfinder/resolver"
	"github.com/marcus-crane/depotfinder/steamdb"
)

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [game name]",
		Short: "Resolve a game name to its app and depot ids, asking when there is more than one match.",
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
			return nil
		},
	}
}

func (a *app) resolve(cmd *cobra.Command, name string) (resolver.Result, error) {
	r, err := a.resolver()
	if err != nil {
		return resolver.Result{}, err
	}
	return r.Resolve(cmd.Context(), name)
}

func (a *app) printResolution(res resolver.Result) {
	source := "steam"
	if res.FromCache {
		source = "cache"
	}
	fmt.Fprintf(a.out, "App ID: %s\n", res.AppID)
	fmt.Fprintf(a.out, "Depot ID: %s\n", res.DepotID)
	fmt.Fprintf(a.out, "Resolved from: %s\n", source)
	fmt.Fprintf(a.out, "Depot info: %s\n", a.depotURL(res.DepotID))
}

func (a *app) depotURL(depotID string) string {
	return strings.TrimRight(a.cfg.SteamDB.URL, "/") + fmt.Sprintf(steamdb.DEPOT_PATH, depotID)
}
