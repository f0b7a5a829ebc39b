package main

import (
	"fmt"
	"os"

	"github.com/mwantia/screener/cmd/screener/cli"
	"github.com/mwantia/screener/cmd/screener/cli/client"
	"github.com/mwantia/screener/cmd/screener/cli/server"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	root := cli.NewRootCommand(cli.VersionInfo{
		Version: version,
		Commit:  commit,
	})

	root.AddCommand(cli.NewVersionCommand())

	root.AddCommand(server.NewAgentCommand())
	root.AddCommand(server.NewConfigCommand())
	root.AddCommand(server.NewStoreCommand())

	root.AddCommand(client.NewQueryCommand())
	root.AddCommand(client.NewExportCommand())
	root.AddCommand(client.NewSavedCommand())

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
