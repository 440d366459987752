package main

import "github.com/timvw/plotpipe/cmd"

func main() {
	cmd.Execute()
}
