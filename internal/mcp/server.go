// Package mcp implements the Model Context Protocol server that exposes
// corpus search and fetch to AI clients over stdio.
package mcp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/finewiki/finewiki-mcp/internal/index"
	"github.com/finewiki/finewiki-mcp/internal/query"
	"github.com/finewiki/finewiki-mcp/pkg/version"
)

// Server bridges MCP clients with the query resolver. The resolver is an
// explicit dependency constructed once at startup and passed in; there is
// no process-wide searcher.
type Server struct {
	mcp       *mcp.Server
	resolver  *query.Resolver
	corpusDir string
	indexDir  string
	logger    *slog.Logger
}

// NewServer creates the MCP server around an open resolver.
func NewServer(resolver *query.Resolver, corpusDir, indexDir string) (*Server, error) {
	if resolver == nil {
		return nil, errors.New("query resolver is required")
	}

	s := &Server{
		resolver:  resolver,
		corpusDir: corpusDir,
		indexDir:  indexDir,
		logger:    slog.Default(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "finewiki-mcp",
			Version: version.Version,
		},
		nil,
	)
	s.registerTools()

	return s, nil
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_by_title",
		Description: "Search documents by title. Returns matching document ids, titles, and relevance scores.",
	}, s.searchByTitleHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_by_content",
		Description: "Search documents by full content. Returns matching document ids, titles, and relevance scores.",
	}, s.searchByContentHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "fetch_content",
		Description: "Fetch the full content of a document by its id. Returns id, title, and content, or found=false when no such document exists.",
	}, s.fetchContentHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_status",
		Description: "Report the committed index: document count, indexed file count, and the corpus and index locations.",
	}, s.indexStatusHandler)

	s.logger.Info("MCP tools registered", slog.Int("count", 4))
}

// searchByTitleHandler is the MCP SDK handler for the search_by_title tool.
func (s *Server) searchByTitleHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	if input.Query == "" {
		return nil, SearchOutput{}, NewInvalidParamsError("query parameter is required")
	}

	results, err := s.resolver.SearchByTitle(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, SearchOutput{}, MapError(err)
	}
	return nil, toSearchOutput(results), nil
}

// searchByContentHandler is the MCP SDK handler for the search_by_content tool.
func (s *Server) searchByContentHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	if input.Query == "" {
		return nil, SearchOutput{}, NewInvalidParamsError("query parameter is required")
	}

	results, err := s.resolver.SearchByContent(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, SearchOutput{}, MapError(err)
	}
	return nil, toSearchOutput(results), nil
}

// fetchContentHandler is the MCP SDK handler for the fetch_content tool.
// A missing document is a structured found=false result, distinguishable
// from a transport or parameter error.
func (s *Server) fetchContentHandler(ctx context.Context, _ *mcp.CallToolRequest, input FetchContentInput) (
	*mcp.CallToolResult,
	FetchContentOutput,
	error,
) {
	doc, err := s.resolver.FetchByID(ctx, input.DocID)
	if err != nil {
		return nil, FetchContentOutput{}, MapError(err)
	}
	if doc == nil {
		return nil, FetchContentOutput{Found: false}, nil
	}
	return nil, FetchContentOutput{
		Found: true,
		Document: &DocumentOutput{
			ID:      doc.ID,
			Title:   doc.Title,
			Content: doc.Content,
		},
	}, nil
}

// indexStatusHandler is the MCP SDK handler for the index_status tool.
func (s *Server) indexStatusHandler(ctx context.Context, _ *mcp.CallToolRequest, _ IndexStatusInput) (
	*mcp.CallToolResult,
	IndexStatusOutput,
	error,
) {
	docs, err := s.resolver.DocCount()
	if err != nil {
		return nil, IndexStatusOutput{}, MapError(err)
	}

	meta := index.NewMetadataStore(index.NewLayout(s.indexDir).MetadataPath()).Load()

	return nil, IndexStatusOutput{
		DocCount:  docs,
		FileCount: len(meta.IndexedFiles),
		CorpusDir: s.corpusDir,
		IndexDir:  s.indexDir,
	}, nil
}

func toSearchOutput(results []query.SearchResult) SearchOutput {
	out := SearchOutput{Results: make([]SearchResultOutput, 0, len(results))}
	for _, r := range results {
		out.Results = append(out.Results, SearchResultOutput{
			ID:    r.ID,
			Title: r.Title,
			Score: r.Score,
		})
	}
	return out
}

// Serve runs the server over stdio until the context is canceled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting MCP server",
		slog.String("transport", "stdio"),
		slog.String("index_dir", s.indexDir),
		slog.String("corpus_dir", s.corpusDir))

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && err != context.Canceled {
		s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("MCP server stopped")
	return nil
}
