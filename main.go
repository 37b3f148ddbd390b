// The main package for the studypacer executable.
package main

import (
	"github.com/qweylin/studypacer/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
