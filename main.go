package main

import (
	"github.com/es-stream-helper/docgate/cmd"
	"github.com/es-stream-helper/docgate/pkg/logger"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logger.Fatalf("docgate: %v", err)
	}
}
