// Package main is the entrypoint for the lakescan CLI.
package main

import (
	"os"

	"github.com/lakescan-io/lakescan/internal/cli"
)

func main() {
	os.Exit(cli.New().Execute())
}
