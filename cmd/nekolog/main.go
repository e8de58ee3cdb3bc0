package main

import "github.com/ewilliams-labs/nekolog/internal/cli"

func main() {
	cli.Execute()
}
