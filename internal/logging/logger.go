package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

// Log levels
const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ToSlogLevel converts our LogLevel to slog.Level
func (l LogLevel) ToSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps a case-insensitive level name to a LogLevel
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// Logger is a simple wrapper around slog
type Logger struct {
	Logger *slog.Logger // Capitalized for direct access
	writer io.Writer
}

var (
	defaultLogger *Logger
	defaultMu     sync.Mutex

	timeNow = time.Now
)

// Init initializes the default logger
func Init(logger *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// Get returns the default logger
func Get() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		// Default to console if not initialized
		defaultLogger = Console(LevelInfo)
	}
	return defaultLogger
}

// lineHandler writes one line per record: time LEVEL file:line message [k=v, ...]
type lineHandler struct {
	level     slog.Level
	addSource bool
	attrs     []slog.Attr
	group     string
	mu        *sync.Mutex
	w         io.Writer
}

func newLineHandler(w io.Writer, level LogLevel, addSource bool) *lineHandler {
	return &lineHandler{
		level:     level.ToSlogLevel(),
		addSource: addSource,
		mu:        &sync.Mutex{},
		w:         w,
	}
}

// Enabled reports whether the handler handles records at the given level
func (h *lineHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats a log record and writes it to the output
func (h *lineHandler) Handle(ctx context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Time.Format("2006-01-02 15:04:05Z07:00"))
	sb.WriteString(" ")
	sb.WriteString(r.Level.String())

	if h.addSource {
		file, line := "???", 0
		if r.PC != 0 {
			frames := runtime.CallersFrames([]uintptr{r.PC})
			frame, _ := frames.Next()
			file = filepath.Base(frame.File)
			line = frame.Line
		}
		fmt.Fprintf(&sb, " %s:%d", file, line)
	}

	sb.WriteString(" ")
	sb.WriteString(r.Message)

	attrs := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, attr := range h.attrs {
		attrs = appendAttr(attrs, h.group, attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		attrs = appendAttr(attrs, h.group, attr)
		return true
	})
	if len(attrs) > 0 {
		sb.WriteString(" [" + strings.Join(attrs, ", ") + "]")
	}
	sb.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

func appendAttr(attrs []string, group string, attr slog.Attr) []string {
	if attr.Key == "" || attr.Value.String() == "" {
		return attrs
	}
	key := attr.Key
	if group != "" {
		key = group + "." + key
	}
	return append(attrs, fmt.Sprintf("%s=%s", key, attr.Value.String()))
}

// WithAttrs returns a new handler carrying attrs on every record
func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup returns a new handler that prefixes attribute keys with name
func (h *lineHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}

// New creates a logger writing to w at the given level
func New(w io.Writer, level LogLevel) *Logger {
	return &Logger{
		Logger: slog.New(newLineHandler(w, level, true)),
		writer: w,
	}
}

// File creates a new file logger
func File(filename string, append bool, level LogLevel) *Logger {
	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if append {
		flag = os.O_APPEND | os.O_CREATE | os.O_WRONLY
	}

	if dir := filepath.Dir(filename); dir != "." {
		_ = os.MkdirAll(dir, 0755)
	}

	file, err := os.OpenFile(filename, flag, 0666)
	if err != nil {
		// Fall back to stderr if file can't be opened
		return New(os.Stderr, level)
	}
	return New(file, level)
}

// Console creates a logger that writes to stderr
func Console(level LogLevel) *Logger {
	return New(os.Stderr, level)
}

// DevNull creates a logger that discards all output
func DevNull() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		writer: io.Discard,
	}
}

// With returns a logger that adds args to every message
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
		writer: l.writer,
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(slog.LevelDebug, msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(slog.LevelInfo, msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(slog.LevelWarn, msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(slog.LevelError, msg, args...)
}

// log records the caller of the exported method so file:line points at user code
func (l *Logger) log(level slog.Level, msg string, args ...interface{}) {
	ctx := context.Background()
	if !l.Logger.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(timeNow(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.Logger.Handler().Handle(ctx, r)
}

// Close closes the logger if needed (e.g., file handle)
func (l *Logger) Close() error {
	if l.writer == os.Stderr || l.writer == os.Stdout {
		return nil
	}
	if closer, ok := l.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
