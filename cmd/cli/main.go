package main

import "github.com/angelospk/subsubs/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
