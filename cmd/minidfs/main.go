package main

import "github.com/seanp33/minidfs/cmd/minidfs/cmd"

func main() {
	cmd.Execute()
}
