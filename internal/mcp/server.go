// Package mcp implements the Model Context Protocol server for census-mcp:
// newline-delimited JSON-RPC 2.0 over stdio, exposing the location
// resolution and metric ranking tools.
package mcp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bfs/census-acs-mcp/internal/query"
)

// Server represents the MCP server. It holds the one query engine for the
// process and serializes all protocol I/O on the calling goroutine.
type Server struct {
	stdin   io.Reader
	stdout  io.Writer
	scanner *bufio.Scanner
	logger  *slog.Logger
	version string
	engine  *query.Engine
	tools   map[string]ToolHandler
}

// NewServer creates a new MCP server over an engine.
func NewServer(version string, engine *query.Engine, logger *slog.Logger) *Server {
	server := &Server{
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		logger:  logger,
		version: version,
		engine:  engine,
		tools:   make(map[string]ToolHandler),
	}
	server.RegisterTools()
	return server
}

// Start starts the MCP server and begins processing messages
func (s *Server) Start() error {
	s.logger.Info("MCP server starting", "version", s.version)

	for {
		msg, err := s.readMessage()
		if err != nil {
			if err == io.EOF {
				s.logger.Info("MCP server shutting down (EOF)")
				return nil
			}
			if errors.Is(err, errMalformedMessage) {
				s.logger.Error("Error parsing message", "error", err.Error())
				_ = s.writeError(nil, ParseError, fmt.Sprintf("Failed to parse message: %v", err))
				continue
			}
			// A scanner failure (oversized line, broken pipe) leaves the
			// stream position unknown; the scanner never recovers from it.
			s.logger.Error("Transport failure", "error", err.Error())
			return err
		}

		// Notifications don't generate responses
		response := s.handleMessage(msg)
		if response != nil {
			if err := s.writeMessage(response); err != nil {
				s.logger.Error("Error writing response", "error", err.Error())
			}
		}
	}
}

// SetStdin sets the input stream (for testing)
func (s *Server) SetStdin(r io.Reader) {
	s.stdin = r
	s.scanner = nil // Reset scanner so it will be recreated with new reader
}

// SetStdout sets the output stream (for testing)
func (s *Server) SetStdout(w io.Writer) {
	s.stdout = w
}
