package main

import "github.com/i474232898/motogp-standings/internal/cli"

func main() {
	cli.Execute()
}
