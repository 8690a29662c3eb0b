package main

import "github.com/statuswatch/status-plane/cmd"

func main() {
	cmd.Execute()
}
