// Package main is the entry point for the linecov CLI.
package main

import "linecov.dev/pkg/linecov/cmd"

func main() {
	cmd.Execute()
}
