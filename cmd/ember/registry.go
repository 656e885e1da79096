package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ember/internal/driver"
)

// appName names the per-user cache directory.
const appName = "ember"

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Manage the on-disk sharing registry cache",
}

var registryDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete every cached sharing registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := driver.OpenRegistryCache(appName)
		if err != nil {
			return err
		}
		if err := cache.DropAll(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "registry cache dropped")
		return nil
	},
}

func init() {
	registryCmd.AddCommand(registryDropCmd)
}
