package main

import (
	"github.com/charmbracelet/log"
	"github.com/g960059/ormlite"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or bring the widgets table up to date",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	conn, err := openConn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close() //nolint:errcheck

	td, err := widgetTableDescriptor()
	if err != nil {
		return err
	}
	result, err := ormlite.MigrateTable(ctx, conn, td)
	if err != nil {
		return err
	}
	log.Info("schema up to date", "table", td.TableName, "result", result)
	return nil
}
