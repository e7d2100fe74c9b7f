// The main package for the pressharvest executable.
package main

import (
	"github.com/newsroomlab/pressharvest/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
