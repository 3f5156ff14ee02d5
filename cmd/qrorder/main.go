// Command qrorder simulates a booth ordering kiosk. See "qrorder --help".
package main

import (
	"fmt"
	"os"

	"github.com/roach88/qrorder/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return cli.GetExitCode(err)
}
