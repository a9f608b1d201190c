package main

import (
	"os"

	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/app"
)

var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(app.Build)
	os.Exit(cli.Execute())
}
