package main

import "github.com/oshokin/ergomon/cmd/ergomon/cmd"

func main() {
	cmd.Execute()
}
