package main

import (
	"os"

	"github.com/bnema/dexplore/cmd"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(cmd.Execute(version, commit, date, os.Args[1:], os.Stdout, os.Stderr))
}
