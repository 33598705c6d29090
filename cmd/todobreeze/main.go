package main

import (
	"os"

	"todobreeze/cmd/todobreeze/cmd"
)

func main() {
	os.Exit(cmd.Execute(os.Args[1:], os.Stdout, os.Stderr, nil))
}
