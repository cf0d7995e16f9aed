package main

import "github.com/groundworkhq/provision/internal/cli"

func main() {
	cli.Execute()
}
