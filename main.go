package main

import "solrbench/cmd"

func main() {
	cmd.Execute()
}
