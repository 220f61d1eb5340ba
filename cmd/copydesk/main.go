package main

import (
	"copydesk/cmd/handlers"
	"copydesk/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
