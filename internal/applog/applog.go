// Package applog writes the browser's diagnostic log. A bubbletea
// program owns the terminal, so nothing here may print to stderr;
// fetch failures, control-server events, and storage errors go to a
// line-oriented file in the profile directory instead.
package applog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const logName = "blattwerk.log"

// rotateAt is the size past which Init moves the previous log aside.
const rotateAt = 5 << 20

// Values longer than this are cut before quoting; page titles and
// fetch errors can run arbitrarily long.
const maxValue = 200

var (
	mu  sync.Mutex
	out *os.File
)

// Init opens (or creates) the log file under dir and starts appending
// to it. A file already past the size limit is renamed to
// blattwerk.log.1 first, replacing any earlier rotation. Without Init
// every log call is a no-op, which is what the one-shot subcommands
// rely on.
func Init(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, logName)
	if info, err := os.Stat(path); err == nil && info.Size() > rotateAt {
		os.Rename(path, path+".1")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	mu.Lock()
	out = f
	mu.Unlock()
	return nil
}

// Close stops logging and releases the file. Later log calls become
// no-ops again.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		out.Close()
		out = nil
	}
}

// Info records an event with optional key=value pairs:
//
//	applog.Info("control.connected", "remote", addr)
//	applog.Info("session.restored", "tabs", n)
func Info(event string, kv ...any) {
	emit("INFO", event, nil, kv)
}

// Error records an event that carries an error; err lands in the
// err= field ahead of any pairs.
func Error(event string, err error, kv ...any) {
	emit("ERROR", event, err, kv)
}

// emit renders one log line and appends it. Timestamps are UTC so
// logs from different machines line up. A trailing key with no value
// is dropped.
func emit(level, event string, err error, kv []any) {
	mu.Lock()
	defer mu.Unlock()
	if out == nil {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	b.WriteByte(' ')
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(event)
	if err != nil {
		b.WriteString(" err=")
		b.WriteString(field(err.Error()))
	}
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%s", kv[i], field(fmt.Sprint(kv[i+1])))
	}
	b.WriteByte('\n')

	out.WriteString(b.String())
}

// field truncates a value and quotes it when it would break the
// one-line key=value form.
func field(s string) string {
	if len(s) > maxValue {
		s = s[:maxValue] + "…"
	}
	if strings.ContainsAny(s, " \t\n\"") {
		return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
	}
	return s
}
