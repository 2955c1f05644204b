package main

import (
	"os"

	verbatimcmder "github.com/papercomputeco/verbatim/cmd/verbatim"
)

func main() {
	cmd := verbatimcmder.NewVerbatimCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
