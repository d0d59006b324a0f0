package main

import (
	"os"

	"github.com/osqp/extension-build-go/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
