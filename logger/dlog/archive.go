package dlog

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Archiver moves the previous day's log files into a dated directory and
// truncates the live ones. Driven by cron when DLOG_ARCHIVE_CRON is set.
type Archiver struct {
	processing bool
}

func (a *Archiver) process() {
	Log.Info("archiving logs")
	a.processing = true
	defer func() { a.processing = false }()

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	dir := logDir()
	archiveDir := filepath.Join(dir, yesterday)

	counter := 1
	err := os.Mkdir(archiveDir, 0o755)
	for os.IsExist(err) {
		archiveDir = filepath.Join(dir, yesterday+"-"+strconv.Itoa(counter))
		counter++
		err = os.Mkdir(archiveDir, 0o755)
	}
	if err != nil {
		Log.Error("failed to create archive directory", "dir", archiveDir, "err", err)
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		Log.Error("failed to read log directory", "dir", dir, "err", err)
		return
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		src := filepath.Join(dir, entry.Name())
		if err := archiveFile(src, filepath.Join(archiveDir, entry.Name())); err != nil {
			Log.Error("failed to archive log", "file", entry.Name(), "err", err)
			return
		}
		if err := os.Truncate(src, 0); err != nil {
			Log.Error("failed to truncate log", "file", entry.Name(), "err", err)
			return
		}
		Log.Info("archived log", "file", entry.Name())
	}
}

func archiveFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
