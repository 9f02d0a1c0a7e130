// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package logging builds the structured logger shared by the commands.
// Records go to a text handler on the given writer and, when running as
// a systemd service, to the journal as well.
package logging

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

// Level is the level every logger from New uses. It can be changed at run
// time, e.g. by the -log-level flag.
var Level = new(slog.LevelVar)

// RegisterFlags adds -log-level to fs.
func RegisterFlags(fs *flag.FlagSet) {
	fs.Func("log-level", "log level: debug, info, warn or error", func(s string) error {
		return Level.UnmarshalText([]byte(s))
	})
}

type Options struct {
	// Journal also sends records to the systemd journal if one is reachable.
	Journal bool
}

// New returns a logger writing text records to w.
func New(w io.Writer, opts Options) *slog.Logger {
	var handlers []slog.Handler

	terminal := slog.NewTextHandler(w, &slog.HandlerOptions{Level: Level})
	if !opts.Journal || !isSystemdService() {
		handlers = append(handlers, terminal)
	}

	if opts.Journal {
		journal, err := slogjournal.NewHandler(&slogjournal.Options{
			Level: Level,
			ReplaceGroup: func(key string) string {
				return journalKey(key)
			},
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = journalKey(a.Key)
				return a
			},
		})
		if err != nil {
			r := slog.NewRecord(time.Now(), slog.LevelWarn, "systemd journal unavailable", 0)
			r.Add("error", err)
			_ = terminal.Handle(context.Background(), r)
			if len(handlers) == 0 {
				handlers = append(handlers, terminal)
			}
		} else {
			handlers = append(handlers, journal)
		}
	}

	return slog.New(slogmulti.Fanout(handlers...))
}

// Discard is a logger that drops everything, for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Fatal logs msg at error level and exits, like log.Fatal.
func Fatal(l *slog.Logger, msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}

func journalKey(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, strings.ToUpper(s))
}

func isSystemdService() bool {
	content, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return false
	}
	parts := strings.Split(strings.TrimSpace(string(content)), ":")
	if len(parts) < 3 {
		return false
	}
	return strings.HasSuffix(path.Dir(parts[2]), ".service")
}

// Hex formats v as an address-width hex attribute.
func Hex(key string, v uint64) slog.Attr {
	return slog.String(key, fmt.Sprintf("%08X", v))
}
