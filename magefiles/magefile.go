// Package main provides build targets for semmap using Mage.
//
// Usage:
//
//	mage build    Compile the semmap binary to bin/
//	mage test     Run all tests
//	mage lint     Run golangci-lint
//	mage semmap   Refresh SEMMAP.md for this repository
//	mage check    Fail when SEMMAP.md is stale or has layer violations
//	mage clean    Remove build artifacts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "semmap"
	binaryDir  = "bin"
	mainPkg    = "."
)

var binaryPath = filepath.Join(binaryDir, binaryName)

// Build compiles the semmap binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", binaryPath, mainPkg)
}

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Semmap refreshes SEMMAP.md, generating it on first use.
func Semmap() error {
	mg.Deps(Build)
	if _, err := os.Stat("SEMMAP.md"); os.IsNotExist(err) {
		return sh.RunV(binaryPath, "generate", "--purpose", "Derives and maintains a semantic map of a codebase.")
	}
	return sh.RunV(binaryPath, "update")
}

// Check fails when SEMMAP.md is stale, invalid or has layer violations.
func Check() error {
	mg.Deps(Build)
	if err := sh.RunV(binaryPath, "update", "--check"); err != nil {
		return err
	}
	if err := sh.RunV(binaryPath, "validate", "--check-files"); err != nil {
		return err
	}
	_, err := sh.Output(binaryPath, "deps", "--check")
	return err
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binaryDir)
}
