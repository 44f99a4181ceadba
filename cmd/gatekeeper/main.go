package main

import (
	"os"

	"github.com/dshills/gatekeeper/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
