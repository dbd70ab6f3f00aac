package main

import "github.com/jSherz/break-glass-access/cmd"

func main() {
	cmd.Execute()
}
