package main

import "github.com/iksnae/eval-session/cmd"

func main() {
	cmd.Execute()
}
