package main

import "github.com/Prithvi-997/origin-brew/cmd"

func main() {
	cmd.Execute()
}
