package main

import (
	"os"

	"fcehub_backend/internals/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
