package main

import "github.com/emiliopalmerini/mclass/internal/cli"

func main() {
	cli.Execute()
}
