package main

import "github.com/pfrederiksen/mma-calendar/internal/cli"

func main() {
	cli.Execute()
}
