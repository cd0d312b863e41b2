package main

import "github.com/ogulcanaydogan/fuellog/internal/cli"

func main() {
	cli.Execute()
}
