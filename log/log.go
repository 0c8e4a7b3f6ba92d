// Copyright 2016 The go-probeum Authors
// This file is part of the go-bitname library.
//
// The go-bitname library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-bitname library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-bitname library. If not, see <http://www.gnu.org/licenses/>.

// Package log is a small leveled, structured logger in the style of
// go-ethereum's log15-derived package (go-probeum links go-stack/stack,
// mattn/go-colorable and fatih/color for exactly this purpose; the source
// of that package wasn't part of the retrieval pack, so it is reconstructed
// here to the same call-site shape used throughout go-probeum: e.g.
// log.Debug("synchronise", "number", head.Number(), "sign", ...)).
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
)

// Level is a log severity.
type Level int

const (
	LvlError Level = iota
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

var levelNames = [...]string{"EROR", "WARN", "INFO", "DBUG", "TRCE"}
var levelColors = [...]*color.Color{
	color.New(color.FgRed, color.Bold),
	color.New(color.FgYellow),
	color.New(color.FgGreen),
	color.New(color.FgCyan),
	color.New(color.FgMagenta),
}

// Logger is the interface handlers and the fetch loop log through.
type Logger interface {
	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	New(ctx ...interface{}) Logger
}

type logger struct {
	ctx []interface{}
}

var (
	root    = &logger{}
	mu      sync.Mutex
	level   = LvlInfo
	out     io.Writer = colorable.NewColorableStdout()
	useCall           = true
)

// SetLevel sets the minimum level that will be emitted.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetOutput redirects where formatted records are written; tests use this
// to capture output instead of writing to the terminal.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func (l *logger) New(ctx ...interface{}) Logger {
	return &logger{ctx: append(append([]interface{}{}, l.ctx...), ctx...)}
}

func (l *logger) write(lvl Level, msg string, ctx []interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if lvl > level {
		return
	}
	var caller string
	if useCall {
		caller = fmt.Sprintf("%+v", stack.Caller(2))
	}
	fields := append(append([]interface{}{}, l.ctx...), ctx...)
	line := formatLine(lvl, msg, caller, fields)
	fmt.Fprintln(out, line)
}

func formatLine(lvl Level, msg, caller string, ctx []interface{}) string {
	c := levelColors[lvl]
	ts := time.Now().Format("2006-01-02T15:04:05-0700")
	head := fmt.Sprintf("%s[%s] %s", c.Sprint(levelNames[lvl]), ts, msg)
	if caller != "" {
		head = fmt.Sprintf("%s (%s)", head, caller)
	}
	for i := 0; i+1 < len(ctx); i += 2 {
		head = fmt.Sprintf("%s %v=%v", head, ctx[i], ctx[i+1])
	}
	return head
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(LvlTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(LvlDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(LvlInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(LvlWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(LvlError, msg, ctx) }

// New returns a Logger with ctx bound to every subsequent record, mirroring
// log15's New(ctx...) sub-logger pattern.
func New(ctx ...interface{}) Logger { return root.New(ctx...) }

func Trace(msg string, ctx ...interface{}) { root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { root.Error(msg, ctx...) }

func init() {
	if os.Getenv("BITNAME_LOG_NOCOLOR") != "" {
		color.NoColor = true
	}
}
