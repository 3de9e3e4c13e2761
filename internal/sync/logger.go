package sync

import (
	"log"
	"os"
)

// defaultLogger is used whenever a caller passes a nil logger.
func defaultLogger() *log.Logger {
	return log.New(os.Stderr, "[sync] ", log.LstdFlags)
}
