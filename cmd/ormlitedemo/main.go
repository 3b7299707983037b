// Command ormlitedemo exercises the ormlite package end to end: schema
// migration, inserts, and queries, against a
// config supplied by flags, environment, or a TOML file.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("ormlitedemo failed", "err", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
