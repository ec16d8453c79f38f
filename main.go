package main

import (
	"github.com/bentoml/bentoml-comfyui/cmd"
	"os"
)

func main() {
	rootCmd := cmd.NewComfyUICommand()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
