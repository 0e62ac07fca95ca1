package main

import "shuttle/cmd/shuttle/cmd"

func main() {
	cmd.Execute()
}
