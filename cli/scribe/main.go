package main

import (
	"os"

	scribecmder "github.com/Pagnarith-Pit/code-scribe-analytics-lab/cmd/scribe"
)

func main() {
	cmd := scribecmder.NewScribeCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
