// Package main is the entry point for the fieldcheck CLI.
package main

import (
	"os"

	"github.com/AndreyAkinshin/fieldcheck/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
