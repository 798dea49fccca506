package main

import (
	"os"

	"github.com/jeff-dagenais/tklbam/src/cli"
)

func main() {
	os.Exit(cli.Execute())
}
