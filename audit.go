package goSession

import (
	"io"

	internalaudit "github.com/MrEthical07/goSession/internal/audit"
	"go.uber.org/zap"
)

// AuditEvent is one audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the engine's dispatcher goroutine.
type AuditSink = internalaudit.Sink

type (
	NoOpSink       = internalaudit.NoOpSink
	ChannelSink    = internalaudit.ChannelSink
	JSONWriterSink = internalaudit.JSONWriterSink
	ZapSink        = internalaudit.ZapSink
	MultiSink      = internalaudit.MultiSink
)

func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

func NewZapSink(log *zap.Logger) *ZapSink {
	return internalaudit.NewZapSink(log)
}
