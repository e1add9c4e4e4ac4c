// Package lsp implements a Language Server Protocol server for Weft
// templates. It answers completion and hover requests for dialect
// processors and expression object methods out of the dialect cache.
package lsp

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/weft-lang/weft/internal/cache"
	"github.com/weft-lang/weft/internal/dialect"
	"github.com/weft-lang/weft/internal/host"
)

// Server serves LSP requests over stdin/stdout, backed by the dialect
// cache for content-assist queries.
type Server struct {
	cache     *cache.Cache
	workspace host.Workspace
	logger    *zap.Logger

	conn   jsonrpc2.Conn
	cancel context.CancelFunc

	// documents tracks open template documents and the namespaces
	// declared in them.
	docMu     sync.RWMutex
	documents map[string]*document

	capabilities protocol.ServerCapabilities
}

// document is an open template: its text and the xmlns declarations
// visible in it.
type document struct {
	uri        string
	content    string
	namespaces []dialect.Namespace
}

// NewServer creates an LSP server over the given cache and workspace.
func NewServer(c *cache.Cache, workspace host.Workspace, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cache:     c,
		workspace: workspace,
		logger:    logger,
		documents: make(map[string]*document),
		capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{":", "#", "."},
				ResolveProvider:   false,
			},
			HoverProvider: true,
		},
	}
}

// Run starts the server on stdin/stdout and blocks until the client
// requests exit or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting Weft language server")

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	stream := jsonrpc2.NewStream(stdrwc{})
	conn := jsonrpc2.NewConn(stream)
	s.conn = conn

	conn.Go(ctx, s.handler())

	<-ctx.Done()

	s.logger.Info("shutting down Weft language server")
	return conn.Close()
}

// handler returns the JSON-RPC dispatch function.
func (s *Server) handler() jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		s.logger.Debug("received request", zap.String("method", req.Method()))

		switch req.Method() {
		case protocol.MethodInitialize:
			return s.handleInitialize(ctx, reply, req)
		case protocol.MethodInitialized:
			return reply(ctx, nil, nil)
		case protocol.MethodShutdown:
			return reply(ctx, nil, nil)
		case protocol.MethodExit:
			return s.handleExit(ctx, reply, req)
		case protocol.MethodTextDocumentDidOpen:
			return s.handleDidOpen(ctx, reply, req)
		case protocol.MethodTextDocumentDidChange:
			return s.handleDidChange(ctx, reply, req)
		case protocol.MethodTextDocumentDidClose:
			return s.handleDidClose(ctx, reply, req)
		case protocol.MethodTextDocumentCompletion:
			return s.handleCompletion(ctx, reply, req)
		case protocol.MethodTextDocumentHover:
			return s.handleHover(ctx, reply, req)
		default:
			return reply(ctx, nil, jsonrpc2.ErrMethodNotFound)
		}
	}
}

// handleInitialize answers with the server capabilities.
func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse initialize params")
	}

	s.logger.Info("client initialized", zap.Any("clientInfo", params.ClientInfo))

	result := protocol.InitializeResult{
		Capabilities: s.capabilities,
		ServerInfo: &protocol.ServerInfo{
			Name:    "weft-lsp",
			Version: "0.1.0",
		},
	}
	return reply(ctx, result, nil)
}

// handleExit replies, then cancels the server context.
func (s *Server) handleExit(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	if err := reply(ctx, nil, nil); err != nil {
		s.logger.Warn("error replying to exit", zap.Error(err))
	}
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// replyWithError sends an LSP-compliant error response.
func (s *Server) replyWithError(ctx context.Context, reply jsonrpc2.Replier, code jsonrpc2.Code, message string) error {
	return reply(ctx, nil, &jsonrpc2.Error{
		Code:    code,
		Message: message,
	})
}

// stdrwc adapts stdin/stdout to io.ReadWriteCloser for the JSON-RPC
// stream.
type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
