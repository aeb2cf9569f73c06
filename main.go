package main

import "github.com/Alijeyrad/caseservice/cmd"

func main() {
	cmd.Execute()
}
