package main

import "github.com/notargets/gofoam/cmd"

func main() {
	cmd.Execute()
}
