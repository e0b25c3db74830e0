package main

import "github.com/deploymenttheory/go-findmy/cmd"

func main() {
	cmd.Execute()
}
