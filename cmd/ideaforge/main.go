package main

import (
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "ideaforge"}

	root.AddCommand(runCMD(), reportCMD())
	_ = root.Execute()
}
