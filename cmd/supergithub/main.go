package main

import (
	"os"

	logger "github.com/sirupsen/logrus"

	"supergithub/internal/cmd"
)

func main() {
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	logger.SetLevel(logger.WarnLevel)
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	cmd.Execute()
}
