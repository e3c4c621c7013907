package main

import "syncbench/cmd"

func main() {
	cmd.Execute()
}
