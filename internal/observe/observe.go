// Package observe decouples the retrieval pipeline from its diagnostics.
// Components report what happened through an Observer; wiring decides
// whether that becomes structured logs, progress bars, or nothing.
package observe

import (
	"time"

	"go.uber.org/zap"
)

// Observer receives instrumentation events from the RAG pipeline.
type Observer interface {
	ChunksCreated(count int)
	ChunkEmbedded(cached bool)
	EmbeddingFallback(reason string)
	RetrievalDone(query string, results int, elapsed time.Duration)
	RetrievalFailed(query string, reason string)
	SessionDisposed()
}

type nop struct{}

func (nop) ChunksCreated(int)                        {}
func (nop) ChunkEmbedded(bool)                       {}
func (nop) EmbeddingFallback(string)                 {}
func (nop) RetrievalDone(string, int, time.Duration) {}
func (nop) RetrievalFailed(string, string)           {}
func (nop) SessionDisposed()                         {}

// Nop returns an observer that discards everything.
func Nop() Observer { return nop{} }

// ZapObserver turns pipeline events into structured log entries.
type ZapObserver struct {
	log *zap.Logger
}

// NewZapObserver wraps a zap logger as an Observer.
func NewZapObserver(log *zap.Logger) *ZapObserver {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapObserver{log: log}
}

func (o *ZapObserver) ChunksCreated(count int) {
	o.log.Info("chunks created", zap.Int("count", count))
}

func (o *ZapObserver) ChunkEmbedded(cached bool) {
	o.log.Debug("chunk embedded", zap.Bool("cached", cached))
}

func (o *ZapObserver) EmbeddingFallback(reason string) {
	o.log.Warn("embedding fallback", zap.String("reason", reason))
}

func (o *ZapObserver) RetrievalDone(query string, results int, elapsed time.Duration) {
	o.log.Info("retrieval done",
		zap.String("query", query),
		zap.Int("results", results),
		zap.Duration("elapsed", elapsed))
}

func (o *ZapObserver) RetrievalFailed(query string, reason string) {
	o.log.Warn("retrieval failed",
		zap.String("query", query),
		zap.String("reason", reason))
}

func (o *ZapObserver) SessionDisposed() {
	o.log.Info("session disposed")
}
