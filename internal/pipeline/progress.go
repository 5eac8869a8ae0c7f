package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Stage names a step of Process that reports progress.
type Stage string

const (
	StageDetect    Stage = "detect"
	StageRecognize Stage = "recognize"
	StageTranslate Stage = "translate"
)

// ProgressCallback receives per-stage progress. Calls for one Process run
// are made from one goroutine at a time.
type ProgressCallback interface {
	OnStart(stage Stage, total int)
	OnProgress(stage Stage, current, total int)
	OnComplete(stage Stage)
	OnError(stage Stage, current int, err error)
}

// NoOpProgressCallback ignores everything.
type NoOpProgressCallback struct{}

func (NoOpProgressCallback) OnStart(Stage, int)         {}
func (NoOpProgressCallback) OnProgress(Stage, int, int) {}
func (NoOpProgressCallback) OnComplete(Stage)           {}
func (NoOpProgressCallback) OnError(Stage, int, error)  {}

// ProgressFunc adapts a function to ProgressCallback. It is called on start
// (current 0) and on every progress update.
type ProgressFunc func(stage Stage, current, total int)

func (f ProgressFunc) OnStart(stage Stage, total int)             { f(stage, 0, total) }
func (f ProgressFunc) OnProgress(stage Stage, current, total int) { f(stage, current, total) }
func (ProgressFunc) OnComplete(Stage)                             {}
func (ProgressFunc) OnError(Stage, int, error)                    {}

// ConsoleProgressCallback draws a bar per stage.
type ConsoleProgressCallback struct {
	writer    io.Writer
	prefix    string
	width     int
	mutex     sync.Mutex
	startTime time.Time
}

// NewConsoleProgressCallback writes to writer, or stderr when nil.
func NewConsoleProgressCallback(writer io.Writer, prefix string) *ConsoleProgressCallback {
	if writer == nil {
		writer = os.Stderr
	}
	return &ConsoleProgressCallback{writer: writer, prefix: prefix, width: 30}
}

// WithWidth sets the bar width.
func (c *ConsoleProgressCallback) WithWidth(width int) *ConsoleProgressCallback {
	c.width = width
	return c
}

func (c *ConsoleProgressCallback) OnStart(stage Stage, total int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.startTime = time.Now()
	c.draw(stage, 0, total)
}

func (c *ConsoleProgressCallback) OnProgress(stage Stage, current, total int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.draw(stage, current, total)
}

func (c *ConsoleProgressCallback) OnComplete(stage Stage) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	_, _ = fmt.Fprintf(c.writer, " %v\n", time.Since(c.startTime).Round(time.Millisecond))
}

func (c *ConsoleProgressCallback) OnError(stage Stage, current int, err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	_, _ = fmt.Fprintf(c.writer, "\n%s%s: error at item %d: %v\n", c.prefix, stage, current, err)
}

func (c *ConsoleProgressCallback) draw(stage Stage, current, total int) {
	if total <= 0 {
		return
	}
	filled := c.width * current / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", c.width-filled)
	_, _ = fmt.Fprintf(c.writer, "\r%s%-9s [%s] %d/%d", c.prefix, stage, bar, current, total)
}

// LogProgressCallback reports through slog.
type LogProgressCallback struct {
	logger *slog.Logger
	level  slog.Level
	starts map[Stage]time.Time
	mutex  sync.Mutex
}

// NewLogProgressCallback logs at level on logger, or the default logger.
func NewLogProgressCallback(logger *slog.Logger, level slog.Level) *LogProgressCallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProgressCallback{logger: logger, level: level, starts: make(map[Stage]time.Time)}
}

func (l *LogProgressCallback) OnStart(stage Stage, total int) {
	l.mutex.Lock()
	l.starts[stage] = time.Now()
	l.mutex.Unlock()
	l.logger.Log(context.Background(), l.level, "Stage started", "stage", stage, "total", total)
}

func (l *LogProgressCallback) OnProgress(stage Stage, current, total int) {
	if current == total {
		l.logger.Log(context.Background(), l.level, "Stage progress", "stage", stage, "current", current, "total", total)
	}
}

func (l *LogProgressCallback) OnComplete(stage Stage) {
	l.mutex.Lock()
	start := l.starts[stage]
	l.mutex.Unlock()
	l.logger.Log(context.Background(), l.level, "Stage completed",
		"stage", stage, "elapsed", time.Since(start).Round(time.Millisecond))
}

func (l *LogProgressCallback) OnError(stage Stage, current int, err error) {
	l.logger.Log(context.Background(), slog.LevelError, "Stage error", "stage", stage, "current", current, "error", err)
}

// MultiProgressCallback fans out to several callbacks.
type MultiProgressCallback struct {
	callbacks []ProgressCallback
}

// NewMultiProgressCallback combines callbacks.
func NewMultiProgressCallback(callbacks ...ProgressCallback) *MultiProgressCallback {
	return &MultiProgressCallback{callbacks: callbacks}
}

func (m *MultiProgressCallback) OnStart(stage Stage, total int) {
	for _, cb := range m.callbacks {
		cb.OnStart(stage, total)
	}
}

func (m *MultiProgressCallback) OnProgress(stage Stage, current, total int) {
	for _, cb := range m.callbacks {
		cb.OnProgress(stage, current, total)
	}
}

func (m *MultiProgressCallback) OnComplete(stage Stage) {
	for _, cb := range m.callbacks {
		cb.OnComplete(stage)
	}
}

func (m *MultiProgressCallback) OnError(stage Stage, current int, err error) {
	for _, cb := range m.callbacks {
		cb.OnError(stage, current, err)
	}
}
