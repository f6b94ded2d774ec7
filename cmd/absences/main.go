package main

import (
	"context"
	"os"

	"absencecli/internal/cli"
	"absencecli/internal/infrastructure"
)

func main() {
	err := cli.Execute(context.Background())
	infrastructure.CloseLogFile()
	if err != nil {
		os.Exit(1)
	}
}
