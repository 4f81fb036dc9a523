package log

import (
	"fmt"
	"github.com/sirupsen/logrus"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const (
	defaultLevel = logrus.InfoLevel
)

var logger *logrus.Logger
var logFile *os.File
var logInit sync.Once

// initLogger sets up the process logger writing to stdout
func initLogger() {
	logger = logrus.New()
	logger.Out = os.Stdout
	logger.SetLevel(defaultLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
		PadLevelText:  true,
	})
}

// Logger gives the logger instance to enable logging events
func Logger() *logrus.Logger {
	logInit.Do(initLogger)
	return logger
}

// SetLevel parses the given level name and applies it. Unknown names fall back to info.
func SetLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = defaultLevel
	}
	Logger().SetLevel(lvl)
	return lvl
}

// SetOutputFile makes the logger append to the given file as well as stdout.
// The file and its directory are created if non-existent.
func SetOutputFile(path string) (err error) {
	dir := filepath.Dir(path)
	if _, err = os.Stat(dir); os.IsNotExist(err) {
		err = os.MkdirAll(dir, 0755)
		if err != nil {
			return fmt.Errorf("error creating log directory %s: %s", dir, err)
		}
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("opening log file failed: %s", err)
	}
	lg := Logger()
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file
	lg.SetOutput(io.MultiWriter(os.Stdout, file))
	return nil
}

// WriteLogAndReturnError logs a given formatted string as an error and
// returns an error generated from the same string
func WriteLogAndReturnError(format string, params ...interface{}) error {
	err := fmt.Errorf(format, params...)
	Logger().Error(err.Error())
	return err
}
