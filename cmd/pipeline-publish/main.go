// pipeline-publish publishes the training pipeline to a workspace and points the
// training endpoint at it.
package main

import (
	"fmt"
	"os"
)

func main() {
	app := newApp()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "pipeline-publish: %v\n", err)
		os.Exit(1)
	}
}
