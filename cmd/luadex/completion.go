package main

import (
	"github.com/spf13/cobra"
)

// completeCatalogFlag suggests JSON files for the --catalog flag.
func completeCatalogFlag(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeItemIDs completes item ids against the loaded catalog.
func completeItemIDs(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	path, _ := cmd.Flags().GetString("catalog")
	if path == "" {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cat, err := loadCatalogFlag(path)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var out []string
	for _, id := range cat.ItemIDs() {
		if toComplete == "" || len(id) >= len(toComplete) && id[:len(toComplete)] == toComplete {
			out = append(out, id)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	_ = showCmd.RegisterFlagCompletionFunc("catalog", completeCatalogFlag)
	_ = simulateCmd.RegisterFlagCompletionFunc("catalog", completeCatalogFlag)
	_ = exploreCmd.RegisterFlagCompletionFunc("catalog", completeCatalogFlag)
	showCmd.ValidArgsFunction = completeItemIDs
}
