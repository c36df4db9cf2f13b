package main

import "github.com/catrec/catrec/cmd"

func main() {
	cmd.Execute()
}
