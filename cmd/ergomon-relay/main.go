package main

import "github.com/oshokin/ergomon/cmd/ergomon-relay/cmd"

func main() {
	cmd.Execute()
}
