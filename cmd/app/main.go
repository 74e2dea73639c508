package main

import (
	"os"

	"github.com/sammiykay/community-alert/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		os.Exit(1)
	}
}
