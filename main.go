package main

import "github.com/ostanin/huddle/cmd"

func main() {
	cmd.Execute()
}
