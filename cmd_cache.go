package main

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newCacheCmd(a *app) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect remembered resolutions.",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every cached game name with its app and depot ids.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.cacheStore()
			if err != nil {
				return err
			}
			entries, err := store.All()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(a.out, "The cache is empty")
				return nil
			}

			names := make([]string, 0, len(entries))
			for name := range entries {
				names = append(names, name)
			}
			sort.Strings(names)

			t := newTable(a.out)
			t.AppendHeader(table.Row{"Game", "App ID", "Depot ID"})
			for _, name := range names {
				t.AppendRow(table.Row{name, entries[name].AppID, entries[name].DepotID})
			}
			t.Render()
			return nil
		},
	})
	return cacheCmd
}
