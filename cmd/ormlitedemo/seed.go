package main

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/g960059/ormlite"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed [name]",
	Short: "Insert a demo widget row",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
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

	name := "widget"
	if len(args) == 1 {
		name = args[0]
	}
	w := &Widget{
		SKU:       uuid.NewString(),
		Name:      name,
		Quantity:  1,
		Active:    true,
		CreatedAt: time.Now(),
	}
	if err := ormlite.Insert(ctx, conn, td, w); err != nil {
		return err
	}
	log.Info("inserted widget", "id", w.ID, "sku", w.SKU, "name", w.Name)
	return nil
}
