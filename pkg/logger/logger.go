package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

var (
	DebugLog *log.Logger
	InfoLog  *log.Logger
	WarnLog  *log.Logger
	ErrorLog *log.Logger
	logFile  *os.File
	level    = INFO
)

const (
	DEBUG = iota
	INFO
	WARN
	ERROR
)

// ParseLevel maps a level name to its constant. Empty means INFO.
func ParseLevel(name string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DEBUG, nil
	case "", "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unknown log level %q", name)
	}
}

// InitLogger sends log output to stderr and, when filename is not empty,
// appends it to that file as well.
func InitLogger(filename string, lvl int) error {
	var out io.Writer = os.Stderr
	if filename != "" {
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		Close()
		logFile = f
		out = io.MultiWriter(os.Stderr, logFile)
	}
	SetOutput(out, lvl)
	return nil
}

// SetOutput points every logger at w.
func SetOutput(w io.Writer, lvl int) {
	level = lvl
	flags := log.Ldate | log.Ltime
	DebugLog = log.New(w, "DEBUG: ", flags)
	InfoLog = log.New(w, "INFO: ", flags)
	WarnLog = log.New(w, "WARN: ", flags)
	ErrorLog = log.New(w, "ERROR: ", flags)
}

func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func Init() {
	SetOutput(os.Stderr, level)
}

func Debugf(format string, v ...interface{}) {
	if level > DEBUG {
		return
	}
	if DebugLog == nil {
		Init()
	}
	DebugLog.Printf(format, v...)
}

func Infof(format string, v ...interface{}) {
	if level > INFO {
		return
	}
	if InfoLog == nil {
		Init()
	}
	InfoLog.Printf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	if level > WARN {
		return
	}
	if WarnLog == nil {
		Init()
	}
	WarnLog.Printf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	if ErrorLog == nil {
		Init()
	}
	ErrorLog.Printf(format, v...)
}
