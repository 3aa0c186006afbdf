package main

import (
	"github.com/cloudpilot-ai/discoverctl/cmd"
)

func main() {
	cmd.Execute()
}
