package main

import "github.com/notargets/cutcell/cmd"

func main() {
	cmd.Execute()
}
