// Package main is the entry point for the rsbench binary.
package main

import (
	"os"

	_ "github.com/mattn/go-sqlite3"

	"rsbench/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
