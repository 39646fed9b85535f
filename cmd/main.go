package main

import (
	"os"

	"github.com/google/logger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Fatalf("luckydraw: %v", err)
	}
}
