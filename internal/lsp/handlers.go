package lsp

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf16"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/weft-lang/weft/internal/dialect"
	"github.com/weft-lang/weft/internal/host"
)

// xmlnsPattern matches xmlns:prefix="uri" declarations in template text.
var xmlnsPattern = regexp.MustCompile(`xmlns:([A-Za-z_][A-Za-z0-9_.-]*)\s*=\s*["']([^"']*)["']`)

// handleDidOpen tracks a newly opened template document.
func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse didOpen params")
	}

	s.setDocument(string(params.TextDocument.URI), params.TextDocument.Text)
	return reply(ctx, nil, nil)
}

// handleDidChange updates a tracked document. Full sync, so the last
// content change wins.
func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse didChange params")
	}

	if len(params.ContentChanges) == 0 {
		return reply(ctx, nil, nil)
	}
	content := params.ContentChanges[len(params.ContentChanges)-1].Text
	s.setDocument(string(params.TextDocument.URI), content)
	return reply(ctx, nil, nil)
}

// handleDidClose drops a tracked document.
func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse didClose params")
	}

	s.docMu.Lock()
	delete(s.documents, string(params.TextDocument.URI))
	s.docMu.Unlock()

	return reply(ctx, nil, nil)
}

// handleCompletion answers a completion request from the dialect cache:
// processor suggestions for markup tokens, expression object method
// suggestions for #-prefixed tokens.
func (s *Server) handleCompletion(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.CompletionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse completion params")
	}

	doc, project, ok := s.documentContext(string(params.TextDocument.URI))
	if !ok {
		return reply(ctx, protocol.CompletionList{IsIncomplete: false, Items: []protocol.CompletionItem{}}, nil)
	}

	token := tokenAt(doc.content, int(params.Position.Line), int(params.Position.Character))
	items := make([]protocol.CompletionItem, 0)

	if strings.HasPrefix(token, "#") {
		for _, m := range s.cache.ExpressionObjectMethods(project, doc.namespaces, token[1:]) {
			items = append(items, methodCompletionItem(m))
		}
	} else if token != "" {
		for _, p := range s.cache.AttributeProcessors(project, doc.namespaces, token) {
			items = append(items, processorCompletionItem(p, protocol.CompletionItemKindProperty))
		}
		for _, p := range s.cache.ElementProcessors(project, doc.namespaces, token) {
			items = append(items, processorCompletionItem(p, protocol.CompletionItemKindClass))
		}
	}

	return reply(ctx, protocol.CompletionList{IsIncomplete: false, Items: items}, nil)
}

// handleHover answers a hover request with the documentation of the
// processor or expression object method under the cursor.
func (s *Server) handleHover(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.HoverParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse hover params")
	}

	doc, project, ok := s.documentContext(string(params.TextDocument.URI))
	if !ok {
		return reply(ctx, nil, nil)
	}

	token := wordAt(doc.content, int(params.Position.Line), int(params.Position.Character))
	contents := s.hoverContents(project, doc.namespaces, token)
	if contents == "" {
		return reply(ctx, nil, nil)
	}

	return reply(ctx, protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: contents,
		},
	}, nil)
}

// hoverContents resolves a token to documentation text, trying attribute
// processors, element processors, then expression object methods.
func (s *Server) hoverContents(project host.Project, namespaces []dialect.Namespace, token string) string {
	if token == "" {
		return ""
	}

	if strings.HasPrefix(token, "#") {
		if m := s.cache.ExpressionObjectMethod(project, namespaces, token[1:]); m != nil && m.Documentation != nil {
			return m.Documentation.Value
		}
		return ""
	}

	for _, kind := range []dialect.ProcessorKind{dialect.AttributeProcessor, dialect.ElementProcessor} {
		if p := s.cache.Processor(project, namespaces, kind, token); p != nil && p.Documentation != nil {
			return p.Documentation.Value
		}
	}
	return ""
}

// setDocument stores the document and re-extracts its namespaces.
func (s *Server) setDocument(docURI, content string) {
	doc := &document{
		uri:        docURI,
		content:    content,
		namespaces: extractNamespaces(content),
	}

	s.docMu.Lock()
	s.documents[docURI] = doc
	s.docMu.Unlock()

	s.logger.Debug("tracked document",
		zap.String("uri", docURI),
		zap.Int("namespaces", len(doc.namespaces)))
}

// documentContext returns the tracked document and its owning project.
func (s *Server) documentContext(docURI string) (*document, host.Project, bool) {
	s.docMu.RLock()
	doc, ok := s.documents[docURI]
	s.docMu.RUnlock()
	if !ok {
		return nil, nil, false
	}

	project, ok := s.workspace.ProjectFor(uri.URI(docURI).Filename())
	if !ok {
		s.logger.Debug("document belongs to no open project", zap.String("uri", docURI))
		return nil, nil, false
	}
	return doc, project, true
}

// extractNamespaces collects the xmlns:prefix declarations in a template.
func extractNamespaces(content string) []dialect.Namespace {
	var namespaces []dialect.Namespace
	for _, m := range xmlnsPattern.FindAllStringSubmatch(content, -1) {
		namespaces = append(namespaces, dialect.Namespace{
			Prefix: m[1],
			URI:    m[2],
		})
	}
	return namespaces
}

// tokenAt returns the partial token ending at the cursor, the prefix the
// user is mid-way through typing.
func tokenAt(content string, line, character int) string {
	text := lineAt(content, line)
	cursor := byteColumn(text, character)

	start := cursor
	for start > 0 && isTokenChar(text[start-1]) {
		start--
	}
	return text[start:cursor]
}

// wordAt returns the whole token under the cursor, extending both ways.
func wordAt(content string, line, character int) string {
	text := lineAt(content, line)
	cursor := byteColumn(text, character)

	start := cursor
	for start > 0 && isTokenChar(text[start-1]) {
		start--
	}
	end := cursor
	for end < len(text) && isTokenChar(text[end]) {
		end++
	}
	return text[start:end]
}

// byteColumn converts an LSP position character, a UTF-16 code unit
// offset, to a byte offset into the line.
func byteColumn(text string, character int) int {
	if character <= 0 {
		return 0
	}
	units := 0
	for i, r := range text {
		if units >= character {
			return i
		}
		units += utf16.RuneLen(r)
	}
	return len(text)
}

func lineAt(content string, line int) string {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	return lines[line]
}

// isTokenChar reports whether c can appear in a processor or expression
// token: letters, digits, and the :.#-_ punctuation they use.
func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == ':' || c == '.' || c == '#' || c == '-' || c == '_':
		return true
	}
	return false
}

// processorCompletionItem converts a processor to an LSP completion item.
func processorCompletionItem(p *dialect.Processor, kind protocol.CompletionItemKind) protocol.CompletionItem {
	item := protocol.CompletionItem{
		Label:            p.FullName(),
		Kind:             kind,
		Detail:           p.Dialect.Name,
		InsertText:       p.FullName(),
		InsertTextFormat: protocol.InsertTextFormatPlainText,
	}
	if p.Documentation != nil {
		item.Documentation = protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: p.Documentation.Value,
		}
	}
	return item
}

// methodCompletionItem converts an expression object method to an LSP
// completion item. Bean properties surface as properties, the rest as
// methods.
func methodCompletionItem(m *dialect.ExpressionObjectMethod) protocol.CompletionItem {
	kind := protocol.CompletionItemKindMethod
	if m.BeanProperty {
		kind = protocol.CompletionItemKindProperty
	}
	item := protocol.CompletionItem{
		Label:            "#" + m.Name,
		Kind:             kind,
		Detail:           m.Dialect.Name,
		InsertText:       "#" + m.Name,
		InsertTextFormat: protocol.InsertTextFormatPlainText,
	}
	if m.Documentation != nil {
		item.Documentation = protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: m.Documentation.Value,
		}
	}
	return item
}
