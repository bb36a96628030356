//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target to run when none is specified
var Default = Build

// Build compiles the project binaries into the bin/ directory.
func Build() error {
	fmt.Println("Building...")
	return sh.Run("go", "build", "-o", "./bin", "./...")
}

// Install copies the csv2sqlite binary to /usr/local/bin.
func Install() error {
	mg.Deps(Build)
	fmt.Println("Installing...")
	return sh.Run("cp", "bin/csv2sqlite", "/usr/local/bin/csv2sqlite")
}

// Test runs all tests in the project with verbose output.
func Test() error {
	fmt.Println("Running Tests...")
	return sh.Run("go", "test", "-v", "./...")
}

// TestCore runs the reader, inference and loader tests only.
func TestCore() error {
	fmt.Println("Running Core Tests...")
	return sh.Run("go", "test", "-timeout", "60s",
		"github.com/darianmavgo/csv2sqlite/converters/...")
}

// Smoke converts a small generated CSV end to end with the built binary.
func Smoke() error {
	mg.Deps(Build)
	fmt.Println("Running smoke conversion...")
	if err := os.MkdirAll("test_output", 0755); err != nil {
		return err
	}
	input := "test_output/smoke.csv"
	if err := os.WriteFile(input, []byte("id,name,score\n1,ann,3.5\n2,bob,\n"), 0644); err != nil {
		return err
	}
	return sh.RunV("./bin/csv2sqlite", "--force", input, "test_output/smoke.db")
}

// Clean removes the bin directory and test outputs.
func Clean() error {
	fmt.Println("Cleaning...")
	if err := os.RemoveAll("bin"); err != nil {
		return err
	}
	if err := os.RemoveAll("test_output"); err != nil {
		return err
	}
	return nil
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println("Running go mod tidy...")
	return sh.Run("go", "mod", "tidy")
}

// Check runs formatting and linting checks (fmt, vet).
func Check() error {
	mg.Deps(Fmt, Vet)
	return nil
}

// Fmt runs go fmt ./...
func Fmt() error {
	fmt.Println("Running go fmt...")
	return sh.Run("go", "fmt", "./...")
}

// Vet runs go vet ./...
func Vet() error {
	fmt.Println("Running go vet...")
	return sh.Run("go", "vet", "./...")
}
