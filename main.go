package main

import "picloader/cmd"

func main() {
	cmd.Execute()
}
