// Package main is the single-binary entrypoint for CartQuest.
package main

import "github.com/cartquest/cartquest/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
