package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xhad/resumerag/internal/observe"
	"github.com/xhad/resumerag/internal/types"
	"github.com/xhad/resumerag/pkg/chunker"
	"github.com/xhad/resumerag/pkg/config"
	"github.com/xhad/resumerag/pkg/llm"
	"github.com/xhad/resumerag/pkg/rag"
	"github.com/xhad/resumerag/pkg/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

// Message is the wire format for both directions of a session socket.
type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content"`
	Data    interface{} `json:"data,omitempty"`
}

// Server maps one retrieval session to one websocket connection, which
// matches the one-instance-per-request concurrency model of the core:
// sessions never share a vector store.
type Server struct {
	config *config.Config
	log    *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{config: cfg, log: log}
}

func (s *Server) Run() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/session", s.handleSession)

	s.log.Info("session server listening", zap.String("addr", s.config.Server.Addr))
	return http.ListenAndServe(s.config.Server.Addr, mux)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	svc := s.newSession()
	defer svc.Dispose()

	ctx := r.Context()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "initialize":
			if err := svc.Initialize(ctx, msg.Content); err != nil {
				s.sendError(conn, err)
				continue
			}
			s.send(conn, Message{Type: "initialized", Data: svc.Stats()})

		case "query":
			rc, err := svc.RetrieveContext(ctx, msg.Content)
			if err != nil {
				s.sendError(conn, err)
				continue
			}
			s.send(conn, Message{Type: "context", Data: rc})

		case "multi_query":
			queries := splitQueries(msg.Content)
			rc, err := svc.RetrieveMultiQueryContext(ctx, queries)
			if err != nil {
				s.sendError(conn, err)
				continue
			}
			s.send(conn, Message{Type: "context", Data: rc})

		case "generate_queries":
			analysisType, jobDescription := splitDirective(msg.Content)
			s.send(conn, Message{
				Type: "queries",
				Data: svc.GenerateQueries(analysisType, jobDescription),
			})

		case "stats":
			s.send(conn, Message{Type: "stats", Data: svc.Stats()})

		case "dispose":
			svc.Dispose()
			s.send(conn, Message{Type: "disposed"})

		default:
			s.sendError(conn, fmt.Errorf("unknown message type: %s", msg.Type))
		}
	}
}

// newSession wires a fresh chunker, store, and service for one
// connection.
func (s *Server) newSession() *rag.Service {
	obs := observe.NewZapObserver(s.log)

	var embedder types.Embedder
	emb, err := llm.NewProvider(s.config.Embedder.Provider, llm.EmbedderConfig{
		Model:     s.config.Embedder.Model,
		BaseURL:   s.config.Embedder.BaseURL,
		Dimension: s.config.Embedder.Dimension,
		RateLimit: s.config.Embedder.RateLimit,
	})
	if err != nil {
		// The store degrades to the deterministic fallback embedding.
		s.log.Warn("embedding provider unavailable", zap.Error(err))
	} else {
		embedder = emb
	}

	vs := store.NewWithConfig(store.VectorStoreConfig{
		Dimension:      s.config.Embedder.Dimension,
		MaxConcurrency: s.config.Embedder.MaxConcurrency,
		MetricsBoost:   s.config.RAG.MetricsBoost,
		SectionBoost:   s.config.RAG.SectionBoost,
		KeywordBoost:   *s.config.RAG.KeywordBoost,
	}, embedder, obs)

	return rag.NewService(rag.ServiceConfig{
		TopK:                s.config.RAG.TopK,
		SimilarityThreshold: s.config.RAG.SimilarityThreshold,
		MaxContextLength:    s.config.RAG.MaxContextLength,
		Reranking:           s.config.RAG.Reranking,
		Chunking: chunker.ChunkerConfig{
			MaxChunkSize:       s.config.Chunking.MaxChunkSize,
			Overlap:            *s.config.Chunking.Overlap,
			RespectBoundaries:  s.config.Chunking.RespectBoundaries,
			PreserveFormatting: s.config.Chunking.PreserveFormatting,
		},
	}, vs, obs)
}

func (s *Server) send(conn *websocket.Conn, msg Message) {
	if err := conn.WriteJSON(msg); err != nil {
		s.log.Warn("websocket write failed", zap.Error(err))
	}
}

func (s *Server) sendError(conn *websocket.Conn, err error) {
	msg := Message{Type: "error", Content: err.Error()}
	if errors.Is(err, rag.ErrNotInitialized) {
		msg.Data = "not_initialized"
	}
	s.send(conn, msg)
}

// splitQueries turns newline-separated content into a query list.
func splitQueries(content string) []string {
	var queries []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			queries = append(queries, line)
		}
	}
	return queries
}

// splitDirective parses "analysisType|job description" content.
func splitDirective(content string) (string, string) {
	parts := strings.SplitN(content, "|", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(content), ""
}
