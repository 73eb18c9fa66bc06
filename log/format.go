// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Format turns a Record into a line of output bytes.
type Format interface {
	Format(r *Record) []byte
}

// FormatFunc turns a function into a Format.
type FormatFunc func(*Record) []byte

func (f FormatFunc) Format(r *Record) []byte { return f(r) }

const timeFormat = "2006-01-02T15:04:05-0700"
const floatFormat = 'f'

const (
	colorNone   = 0
	colorRed    = 31
	colorGreen  = 32
	colorYellow = 33
	colorCyan   = 36
)

func lvlColor(l Lvl) int {
	switch l {
	case LvlCrit, LvlError:
		return colorRed
	case LvlWarn:
		return colorYellow
	case LvlInfo:
		return colorGreen
	case LvlDebug, LvlTrace:
		return colorCyan
	default:
		return colorNone
	}
}

// TerminalFormat prints records the way solmap's CLI reports warnings and
// errors while it replays a trace: an aligned, colorized level, a bracketed
// timestamp, the message, then any context key=value pairs. Pass whether the
// destination is a terminal; colors are omitted otherwise.
func TerminalFormat(usecolor bool) Format {
	return FormatFunc(func(r *Record) []byte {
		var color int
		if usecolor {
			color = lvlColor(r.Lvl)
		}
		b := &bytes.Buffer{}
		if color != colorNone {
			fmt.Fprintf(b, "\x1b[%dm%s\x1b[0m[%s] %s ", color, r.Lvl.AlignedString(), r.Time.Format(timeFormat), r.Msg)
		} else {
			fmt.Fprintf(b, "%s[%s] %s ", r.Lvl.AlignedString(), r.Time.Format(timeFormat), r.Msg)
		}
		logfmt(b, r.Ctx, color)
		return b.Bytes()
	})
}

// LogfmtFormat prints records as plain logfmt lines with no coloring,
// suitable for redirecting to a file.
func LogfmtFormat() Format {
	return FormatFunc(func(r *Record) []byte {
		b := &bytes.Buffer{}
		fmt.Fprintf(b, "t=%s lvl=%s msg=%q", r.Time.Format(timeFormat), r.Lvl.String(), r.Msg)
		if len(r.Ctx) > 0 {
			b.WriteByte(' ')
			logfmt(b, r.Ctx, colorNone)
		}
		b.WriteByte('\n')
		return b.Bytes()
	})
}

func logfmt(buf *bytes.Buffer, ctx []interface{}, color int) {
	for i := 0; i < len(ctx); i += 2 {
		if i != 0 {
			buf.WriteByte(' ')
		}
		k, ok := ctx[i].(string)
		v := formatLogfmtValue(ctx[i+1])
		if !ok {
			k, v = errorKey, formatLogfmtValue(k)
		}
		if color != colorNone {
			fmt.Fprintf(buf, "\x1b[%dm%s\x1b[0m=%s", color, k, v)
		} else {
			fmt.Fprintf(buf, "%s=%s", k, v)
		}
	}
	buf.WriteByte('\n')
}

func formatLogfmtValue(value interface{}) string {
	if value == nil {
		return "nil"
	}
	if t, ok := value.(time.Time); ok {
		return t.Format(timeFormat)
	}
	if lz, ok := value.(Lazy); ok {
		return formatLogfmtValue(evalLazy(lz))
	}
	if err, ok := value.(error); ok {
		return quoteIfNeeded(err.Error())
	}
	if str, ok := value.(fmt.Stringer); ok {
		return quoteIfNeeded(str.String())
	}
	switch v := value.(type) {
	case bool:
		return strconv.FormatBool(v)
	case float32:
		return strconv.FormatFloat(float64(v), floatFormat, 3, 64)
	case float64:
		return strconv.FormatFloat(v, floatFormat, 3, 64)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case string:
		return quoteIfNeeded(v)
	default:
		return quoteIfNeeded(fmt.Sprintf("%+v", v))
	}
}

// evalLazy calls a zero-argument Lazy.Fn and returns its first result,
// deferring the cost of computing an expensive context value until the
// record is actually being written.
func evalLazy(lz Lazy) interface{} {
	if fn, ok := lz.Fn.(func() interface{}); ok {
		return fn()
	}
	return fmt.Sprintf("%v", lz.Fn)
}

func quoteIfNeeded(s string) string {
	if !strings.ContainsAny(s, " =\"\t\n") {
		return s
	}
	return strconv.Quote(s)
}

// Lazy defers evaluation of an expensive context value until a record is
// actually about to be written.
type Lazy struct {
	Fn interface{}
}

// StdoutHandler writes to os.Stdout, colorized when it's a terminal.
var StdoutHandler = StreamHandler(colorable.NewColorableStdout(), TerminalFormat(isTerm(os.Stdout)))

// StderrHandler writes to os.Stderr, colorized when it's a terminal.
var StderrHandler = StreamHandler(colorable.NewColorableStderr(), TerminalFormat(isTerm(os.Stderr)))

func isTerm(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
