package main

import (
	"fmt"

	"github.com/temirov/ghtree/internal/cli"
	"github.com/temirov/ghtree/internal/utils"
)

// main is the entry point for the ghtree command.
func main() {
	loggerInstance, loggerLevel, loggerInitializationError := utils.NewApplicationLogger()
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()
	if applicationExecutionError := cli.Execute(loggerInstance, loggerLevel); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
