// Package main is the single-binary entrypoint for daywatch.
package main

import "github.com/daywatch-app/daywatch/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
