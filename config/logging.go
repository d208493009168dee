package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// LogWriter is the writer used for application and request logs.
var LogWriter io.Writer = os.Stdout

// InitLogging tees the standard logger to path when set. The returned file,
// if any, must be closed by the caller.
func InitLogging(path string) *os.File {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if path == "" {
		LogWriter = os.Stdout
		log.SetOutput(LogWriter)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		log.Printf("Warning: Failed to create logs directory: %v", err)
	}

	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("Warning: Failed to open log file: %v", err)
		LogWriter = os.Stdout
		log.SetOutput(LogWriter)
		return nil
	}

	LogWriter = io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(LogWriter)
	return logFile
}
