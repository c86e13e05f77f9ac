package main

import "github.com/iksnae/research-chat/cmd"

func main() {
	cmd.Execute()
}
