package main

import (
	"github.com/spf13/cobra"
)

func migrateCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(*configFile)
			if err != nil {
				return err
			}
			a.close()
			return nil
		},
	}
}
