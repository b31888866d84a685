package main

import (
	"os"

	auracmder "github.com/jasonzFong/aura-editor/cmd/aura"
)

func main() {
	cmd := auracmder.NewAuraCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
