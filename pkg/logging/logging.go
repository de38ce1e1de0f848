// pkg/logging/logging.go - leveled session logging for appman.
//
// Each process run writes into a timestamped session directory under the
// configured log path: a plain-text log mirrored to the console and a
// JSON-lines file for external tooling. Old session directories are
// pruned on startup.

package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/linuxadmins/appman/pkg/config"
)

// LogLevel represents the severity of the log message.
type LogLevel int

const (
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the string representation of the LogLevel.
func (ll LogLevel) String() string {
	switch ll {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// parseLevel maps a config LogLevel string onto a LogLevel.
func parseLevel(s string) LogLevel {
	switch strings.ToUpper(s) {
	case "ERROR":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Entry is one structured log record in the JSON-lines file.
type Entry struct {
	Time       int64                  `json:"time"`
	Timestamp  string                 `json:"timestamp"`
	Level      string                 `json:"level"`
	Message    string                 `json:"message"`
	PID        int                    `json:"pid"`
	SessionID  string                 `json:"session_id"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Logger writes leveled output to the console and the session files.
type Logger struct {
	mu        sync.Mutex
	logger    *log.Logger
	level     LogLevel
	logFile   *os.File
	jsonFile  *os.File
	sessionID string
	logDir    string
}

// keepSessions is how many old session directories survive cleanup.
const keepSessions = 20

var (
	instance *Logger
	once     sync.Once
)

// Init initializes the singleton Logger from the configuration. It must
// be called before any logging functions are used; logging before Init
// (or after a failed Init) goes to stderr only.
func Init(cfg *config.Configuration) error {
	var initErr error
	once.Do(func() {
		instance, initErr = newLogger(cfg)
	})
	return initErr
}

func newLogger(cfg *config.Configuration) (*Logger, error) {
	start := time.Now()
	sessionID := fmt.Sprintf("appman-%d-%s", start.Unix(), start.Format("2006-01-02-150405"))
	logDir := filepath.Join(cfg.LogPath, start.Format("2006-01-02-150405"))

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("creating log directory %s: %w", logDir, err)
	}

	logFile, err := os.OpenFile(filepath.Join(logDir, "appman.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	jsonFile, err := os.OpenFile(filepath.Join(logDir, "appman.jsonl"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("opening json log file: %w", err)
	}

	level := parseLevel(cfg.LogLevel)
	if cfg.Debug {
		level = LevelDebug
	}

	l := &Logger{
		logger:    log.New(io.MultiWriter(os.Stderr, logFile), "", 0),
		level:     level,
		logFile:   logFile,
		jsonFile:  jsonFile,
		sessionID: sessionID,
		logDir:    logDir,
	}

	cleanupOldSessions(cfg.LogPath)
	return l, nil
}

// cleanupOldSessions removes session directories beyond the retention
// count, oldest first. Best effort.
func cleanupOldSessions(baseDir string) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	if len(dirs) <= keepSessions {
		return
	}
	sort.Strings(dirs)
	for _, name := range dirs[:len(dirs)-keepSessions] {
		os.RemoveAll(filepath.Join(baseDir, name))
	}
}

// Close flushes and closes the session log files.
func Close() {
	if instance == nil {
		return
	}
	instance.mu.Lock()
	defer instance.mu.Unlock()
	if instance.logFile != nil {
		instance.logFile.Close()
	}
	if instance.jsonFile != nil {
		instance.jsonFile.Close()
	}
}

// log writes a message at the given level with key-value pairs.
func (l *Logger) log(level LogLevel, message string, keyValues ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level > l.level {
		return
	}

	now := time.Now()
	props := pairsToMap(keyValues)

	line := fmt.Sprintf("%s %-5s %s", now.Format("2006-01-02 15:04:05"), level.String(), message)
	if len(keyValues) > 0 {
		line += " " + formatPairs(keyValues)
	}
	l.logger.Println(line)

	entry := Entry{
		Time:       now.Unix(),
		Timestamp:  now.Format(time.RFC3339),
		Level:      level.String(),
		Message:    message,
		PID:        os.Getpid(),
		SessionID:  l.sessionID,
		Properties: props,
	}
	if data, err := json.Marshal(entry); err == nil {
		l.jsonFile.Write(append(data, '\n'))
	}
}

// pairsToMap converts variadic key-value pairs into a property map. An
// odd trailing key is kept with a nil value rather than dropped.
func pairsToMap(keyValues []interface{}) map[string]interface{} {
	if len(keyValues) == 0 {
		return nil
	}
	props := make(map[string]interface{}, len(keyValues)/2)
	for i := 0; i < len(keyValues); i += 2 {
		key := fmt.Sprintf("%v", keyValues[i])
		if i+1 < len(keyValues) {
			props[key] = keyValues[i+1]
		} else {
			props[key] = nil
		}
	}
	return props
}

func formatPairs(keyValues []interface{}) string {
	var b strings.Builder
	for i := 0; i < len(keyValues); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v=", keyValues[i])
		if i+1 < len(keyValues) {
			fmt.Fprintf(&b, "%v", keyValues[i+1])
		}
	}
	return b.String()
}

// fallback logs to stderr when the logger was never initialized, so
// early failures are still visible.
func fallback(level LogLevel, message string, keyValues ...interface{}) {
	line := fmt.Sprintf("%-5s %s", level.String(), message)
	if len(keyValues) > 0 {
		line += " " + formatPairs(keyValues)
	}
	fmt.Fprintln(os.Stderr, line)
}

// Info logs an informational message with optional key-value pairs.
func Info(message string, keyValues ...interface{}) {
	if instance == nil {
		fallback(LevelInfo, message, keyValues...)
		return
	}
	instance.log(LevelInfo, message, keyValues...)
}

// Debug logs a debug message with optional key-value pairs.
func Debug(message string, keyValues ...interface{}) {
	if instance == nil {
		return
	}
	instance.log(LevelDebug, message, keyValues...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(message string, keyValues ...interface{}) {
	if instance == nil {
		fallback(LevelWarn, message, keyValues...)
		return
	}
	instance.log(LevelWarn, message, keyValues...)
}

// Error logs an error message with optional key-value pairs.
func Error(message string, keyValues ...interface{}) {
	if instance == nil {
		fallback(LevelError, message, keyValues...)
		return
	}
	instance.log(LevelError, message, keyValues...)
}
