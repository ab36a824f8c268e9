package main

import "github.com/abhinayb/pubwatch/cmd"

func main() {
	cmd.Execute()
}
