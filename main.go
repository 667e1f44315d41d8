package main

import (
	"os"

	"shotty/src/cli"
)

func main() {
	os.Exit(cli.Execute())
}
