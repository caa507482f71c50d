// Package trace provides a process-wide tracer for the surface state
// engine. It replaces the ad hoc global trace-file handle and
// prior-context counter used by the collaborator it's grounded on
// (a raw fopen onto a kernel trace_marker node) with an explicit
// object the host application constructs and tears down, and a
// rotating sink instead of a single append-only file.
package trace

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Tracer emits short, high-frequency trace markers for commit
// pipeline milestones. It is safe for concurrent use.
type Tracer struct {
	log *zap.Logger
	seq atomic.Uint32
}

// Ctx identifies one begin/end bracketed span, mirroring a kernel
// trace_marker "begin_ctx"/"end_ctx" pair.
type Ctx struct {
	seq uint32
}

// New creates a Tracer that writes to path, rotating the file per
// the given size (in megabytes) and keeping at most maxBackups old
// copies.
func New(path string, maxSizeMB, maxBackups int) *Tracer {
	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	})
	enc := zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(enc, sink, zapcore.DebugLevel)
	return &Tracer{log: zap.New(core)}
}

// Noop returns a Tracer that discards every trace. It is the default
// used by constructors that accept an optional *Tracer.
func Noop() *Tracer { return &Tracer{log: zap.NewNop()} }

// Trace emits a single, unbracketed marker.
func (t *Tracer) Trace(msg string, fields ...zap.Field) {
	if t == nil || t.log == nil {
		return
	}
	t.log.Debug(msg, fields...)
}

// Begin opens a bracketed span and returns its Ctx, to be passed to
// End once the span completes.
func (t *Tracer) Begin(msg string, fields ...zap.Field) Ctx {
	c := Ctx{seq: t.nextSeq()}
	t.Trace(msg, append(fields, zap.Uint32("begin_ctx", c.seq))...)
	return c
}

// End closes a span opened by Begin.
func (t *Tracer) End(c Ctx, msg string, fields ...zap.Field) {
	t.Trace(msg, append(fields, zap.Uint32("end_ctx", c.seq))...)
}

func (t *Tracer) nextSeq() uint32 {
	if t == nil {
		return 0
	}
	return t.seq.Add(1) - 1
}

// Sync flushes any buffered trace output.
func (t *Tracer) Sync() error {
	if t == nil || t.log == nil {
		return nil
	}
	return t.log.Sync()
}
