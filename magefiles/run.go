//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the ImmediateRenderer sample until interrupted.
func (Run) Sample() error {
	fmt.Println("Run sample...")
	if _, err := executeCmd("go", withArgs("run", "main.go"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the sample for a fixed number of frames with the given configuration.
func (Run) Frames(configPath string, frames string) error {
	mg.Deps(Build.Sample)
	args := []string{"-config", configPath, "-frames", frames}
	if _, err := executeCmd("bin/immediate", withArgs(args...), withStream()); err != nil {
		return err
	}
	return nil
}
