//go:build mage

package main

import "github.com/magefile/mage/mg"

// Test runs the test suite with race detection.
func Test() error {
	return gocmd("test", "-race", "./...")
}

// Vet checks the module with go vet.
func Vet() error {
	return gocmd("vet", "./...")
}

// Check runs vet and the tests, in that order.
func Check() {
	mg.SerialDeps(Vet, Test)
}
