//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Tidies the module and builds the sample binary into bin/.
func (Build) Sample() error {
	if err := goTidy(); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/immediate", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the unit tests of every package.
func (Build) Test() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the unit tests with the race detector; SyncGeometry and the config
// watcher are exercised concurrently.
func (Build) Race() error {
	if _, err := executeCmd("go", withArgs("test", "-race", "./..."), withDir("engine"), withStream()); err != nil {
		return err
	}
	return nil
}
