package main

import (
	"fmt"
	"os"

	"kesho/internal/cli"
	"kesho/internal/log"
)

func main() {
	ctx, cancel := cli.ShutdownContext(log.New(log.Config{Output: os.Stderr, Component: log.ComponentCLI}))
	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	if closeErr := a.close(); err == nil {
		err = closeErr
	}
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
