package main

import (
	"os"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		os.Exit(1)
	}
}
