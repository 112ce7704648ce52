package main

import (
	"os"

	"barbershop/pkg/logger"
)

const AppName = "bookctl"

func main() {
	log := logger.New(logger.Config{
		Level:   logger.WARN,
		Format:  logger.TEXT,
		Output:  os.Stderr,
		Service: AppName,
	})

	if err := newApp(os.Stdout, log).Run(os.Args); err != nil {
		log.Fatal("Command failed", "error", err)
	}
}
