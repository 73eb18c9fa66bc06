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

// Package log is solmap's leveled, contextual logger, adapted from
// go-ethereum's log15-derived logging package: a Logger interface with a
// root instance, pluggable Handlers, and key/value context.
package log

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-stack/stack"
)

const errorKey = "LOG_ERROR"

// Lvl is a log severity level, most severe first.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

// AlignedString returns a 5-character, space-padded name for l.
func (l Lvl) AlignedString() string {
	switch l {
	case LvlTrace:
		return "TRACE"
	case LvlDebug:
		return "DEBUG"
	case LvlInfo:
		return "INFO "
	case LvlWarn:
		return "WARN "
	case LvlError:
		return "ERROR"
	case LvlCrit:
		return "CRIT "
	default:
		panic("bad level")
	}
}

// String returns the 4-character name of l used by the logfmt encoder.
func (l Lvl) String() string {
	switch l {
	case LvlTrace:
		return "trce"
	case LvlDebug:
		return "dbug"
	case LvlInfo:
		return "info"
	case LvlWarn:
		return "warn"
	case LvlError:
		return "eror"
	case LvlCrit:
		return "crit"
	default:
		panic("bad level")
	}
}

// LvlFromString parses a level name as accepted on the command line.
func LvlFromString(s string) (Lvl, error) {
	switch s {
	case "trace", "trce":
		return LvlTrace, nil
	case "debug", "dbug":
		return LvlDebug, nil
	case "info":
		return LvlInfo, nil
	case "warn":
		return LvlWarn, nil
	case "error", "eror":
		return LvlError, nil
	case "crit":
		return LvlCrit, nil
	default:
		return LvlDebug, fmt.Errorf("unknown level: %v", s)
	}
}

// Record is what a Logger passes to its Handler.
type Record struct {
	Time time.Time
	Lvl  Lvl
	Msg  string
	Ctx  []interface{}
	Call stack.Call
}

// Logger writes leveled, contextual messages to a Handler.
type Logger interface {
	New(ctx ...interface{}) Logger

	GetHandler() Handler
	SetHandler(h Handler)

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

const callDepth = 3

type logger struct {
	ctx []interface{}
	h   *swapHandler
}

// New creates a root Logger with no initial context.
func New(ctx ...interface{}) Logger {
	l := &logger{ctx: normalize(ctx), h: new(swapHandler)}
	l.SetHandler(DiscardHandler())
	return l
}

func (l *logger) write(msg string, lvl Lvl, ctx []interface{}) {
	l.h.Log(&Record{
		Time: time.Now(),
		Lvl:  lvl,
		Msg:  msg,
		Ctx:  newContext(l.ctx, ctx),
		Call: stack.Caller(callDepth),
	})
}

func (l *logger) New(ctx ...interface{}) Logger {
	child := &logger{ctx: newContext(l.ctx, ctx), h: new(swapHandler)}
	child.SetHandler(l.h)
	return child
}

func newContext(prefix, suffix []interface{}) []interface{} {
	normalizedSuffix := normalize(suffix)
	newCtx := make([]interface{}, len(prefix)+len(normalizedSuffix))
	n := copy(newCtx, prefix)
	copy(newCtx[n:], normalizedSuffix)
	return newCtx
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(msg, LvlTrace, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(msg, LvlDebug, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(msg, LvlInfo, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(msg, LvlWarn, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(msg, LvlError, ctx) }

func (l *logger) Crit(msg string, ctx ...interface{}) {
	l.write(msg, LvlCrit, ctx)
	os.Exit(1)
}

func (l *logger) GetHandler() Handler { return l.h.Get() }
func (l *logger) SetHandler(h Handler) { l.h.Swap(h) }

func normalize(ctx []interface{}) []interface{} {
	if len(ctx) == 1 {
		if ctxMap, ok := ctx[0].(Ctx); ok {
			ctx = ctxMap.toArray()
		}
	}
	if len(ctx)%2 != 0 {
		ctx = append(ctx, nil, errorKey, "normalized odd number of arguments by adding nil")
	}
	return ctx
}

// Ctx is a map of key/value pairs that can be passed as a single logging
// argument instead of an alternating key, value, key, value... list.
type Ctx map[string]interface{}

func (c Ctx) toArray() []interface{} {
	arr := make([]interface{}, len(c)*2)
	i := 0
	for k, v := range c {
		arr[i] = k
		arr[i+1] = v
		i += 2
	}
	return arr
}

var (
	rootMu sync.Mutex
	root   Logger = New()
)

// Root returns the root logger.
func Root() Logger {
	rootMu.Lock()
	defer rootMu.Unlock()
	return root
}

// SetDefault installs h as the root logger's handler.
func SetDefault(h Handler) {
	Root().SetHandler(h)
}

func Trace(msg string, ctx ...interface{}) { Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { Root().Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { Root().Crit(msg, ctx...) }
