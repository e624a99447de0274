package main

import (
	"os"

	"github.com/woxQAQ/onu-runtime/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
