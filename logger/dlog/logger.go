package dlog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/robfig/cron/v3"
	slogmulti "github.com/samber/slog-multi"
)

// Log is the process-wide logger. It is built lazily on first use so
// that importing the package has no side effects on the filesystem.
var Log *slog.Logger

var (
	setupOnce sync.Once
	archiver  = &Archiver{}
)

func logger() *slog.Logger {
	setupOnce.Do(func() {
		Log = createLogger()
		if spec := os.Getenv("DLOG_ARCHIVE_CRON"); spec != "" {
			c := cron.New()
			entryID, err := c.AddFunc(spec, archiver.process)
			if err != nil {
				Log.Error("invalid DLOG_ARCHIVE_CRON", "spec", spec, "err", err)
				return
			}
			c.Start()
			Log.Info("scheduled log archive", "entryID", entryID)
		}
	})
	return Log
}

func Info(msg string, args ...any) {
	logger().Info(msg, args...)
}
func Error(msg string, args ...any) {
	logger().Error(msg, args...)
}
func Warn(msg string, args ...any) {
	logger().Warn(msg, args...)
}
func Debug(msg string, args ...any) {
	logger().Debug(msg, args...)
}

// SetDefault swaps the process logger, for embedders that already run
// their own slog setup.
func SetDefault(l *slog.Logger) {
	setupOnce.Do(func() {})
	Log = l
}

func logDir() string {
	if dir := os.Getenv("DLOG_DIR"); dir != "" {
		return dir
	}
	return "logs"
}

func createLogger() *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}

	dir := logDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		// no writable log directory: console only
		return slog.New(NewPrettyHandler(os.Stdout, opts))
	}

	handlers := []slog.Handler{
		NewPrettyHandler(&DualWriter{Stdout: os.Stdout, File: openLog("pretty.log")}, opts),
	}
	if w := openLog("default.txt"); w != io.Discard {
		handlers = append(handlers, slog.NewTextHandler(w, opts))
	}
	if w := openLog("default.json"); w != io.Discard {
		handlers = append(handlers, slog.NewJSONHandler(w, opts))
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

func openLog(name string) io.Writer {
	f, err := os.OpenFile(filepath.Join(logDir(), name), os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o600)
	if err != nil {
		return io.Discard
	}
	return f
}

// DualWriter mirrors every record to stdout and a log file.
type DualWriter struct {
	Stdout *os.File
	File   io.Writer
}

func (t *DualWriter) Write(p []byte) (n int, err error) {
	n, err = t.Stdout.Write(p)
	if err != nil {
		return n, err
	}
	return t.File.Write(p)
}
