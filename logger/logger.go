// This file is part of Dismantle.
//
// Dismantle is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Dismantle is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Dismantle.  If not, see <https://www.gnu.org/licenses/>.

package logger

import (
	"fmt"
	"io"
	"strings"
)

// Permission implementations control whether a Log() call on their behalf
// results in a log entry.
type Permission interface {
	AllowLogging() bool
}

// allow is the type of the Allow value. it implements the Permission
// interface.
type allow struct{}

func (_ allow) AllowLogging() bool {
	return true
}

// Allow can be used in place of a real Permission implementation when
// logging should happen unconditionally.
var Allow allow

// entry is a single line in the log.
type entry struct {
	tag    string
	detail string
}

func (e entry) String() string {
	return fmt.Sprintf("%s: %s", e.tag, e.detail)
}

// Logger is the mechanism for recording log entries.
type Logger struct {
	entries    []entry
	maxEntries int

	// the echo writer receives every entry as it is logged
	echo io.Writer
}

// NewLogger is the preferred method of initialisation for the Logger type.
func NewLogger(maxEntries int) *Logger {
	return &Logger{
		entries:    make([]entry, 0, maxEntries),
		maxEntries: maxEntries,
	}
}

// Log adds an entry to the logger. The detail argument can be of any type
// but error and fmt.Stringer values are treated specially; other types are
// formatted with the %v verb.
func (l *Logger) Log(perm Permission, tag string, detail any) {
	if !perm.AllowLogging() {
		return
	}

	var s string
	switch detail := detail.(type) {
	case error:
		s = detail.Error()
	case fmt.Stringer:
		s = detail.String()
	case string:
		s = detail
	default:
		s = fmt.Sprintf("%v", detail)
	}

	// the detail may be made up of several lines. each line becomes its own
	// entry in the log
	for _, d := range strings.Split(s, "\n") {
		if d == "" {
			continue
		}

		e := entry{tag: tag, detail: d}

		if len(l.entries) >= l.maxEntries {
			l.entries = l.entries[1:]
		}
		l.entries = append(l.entries, e)

		if l.echo != nil {
			l.echo.Write([]byte(fmt.Sprintf("%s\n", e.String())))
		}
	}
}

// Logf adds a formatted entry to the logger. The arguments are the same as
// for fmt.Sprintf().
func (l *Logger) Logf(perm Permission, tag string, format string, args ...any) {
	l.Log(perm, tag, fmt.Sprintf(format, args...))
}

// Clear all entries from the logger.
func (l *Logger) Clear() {
	l.entries = l.entries[:0]
}

// Write contents of the log to the io.Writer.
func (l *Logger) Write(w io.Writer) {
	if w == nil {
		return
	}
	for _, e := range l.entries {
		io.WriteString(w, fmt.Sprintf("%s\n", e.String()))
	}
}

// Tail writes the last N entries to the io.Writer. A number larger than the
// number of entries in the log is not an error.
func (l *Logger) Tail(w io.Writer, number int) {
	if w == nil {
		return
	}

	t := len(l.entries) - number
	if t < 0 {
		t = 0
	}

	for _, e := range l.entries[t:] {
		io.WriteString(w, fmt.Sprintf("%s\n", e.String()))
	}
}

// SetEcho prints entries to the io.Writer as they are logged. A nil writer
// stops any previous echoing.
func (l *Logger) SetEcho(w io.Writer, writeRecent bool) {
	l.echo = w
	if w != nil && writeRecent {
		l.Write(w)
	}
}
