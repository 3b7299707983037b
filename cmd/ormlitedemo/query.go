package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/g960059/ormlite"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "List every widget and report the table's row count",
	RunE:  runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
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
	if _, err := ormlite.MigrateTable(ctx, conn, td); err != nil {
		return err
	}

	widgets, err := ormlite.FindAll(ctx, conn, td, func() *Widget { return &Widget{} })
	if err != nil {
		return err
	}
	for _, w := range widgets {
		fmt.Printf("%d\t%s\t%s\tqty=%s\tactive=%t\tcreated=%s\n",
			w.ID, w.SKU, w.Name, humanize.Comma(w.Quantity), w.Active, humanize.Time(w.CreatedAt))
	}

	count, err := ormlite.Count(ctx, conn, td)
	if err != nil {
		return err
	}
	fmt.Printf("%s row(s) total\n", humanize.Comma(count))
	return nil
}
