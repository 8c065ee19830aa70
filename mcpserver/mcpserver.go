// Package mcpserver exposes the tool catalog as a Model Context Protocol
// server over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/spachava753/deskmcp/tools"
)

// Name is the server name reported to clients.
const Name = "deskmcp"

// New returns an MCP server with one tool per entry of the dispatcher's
// router. Calls are handed to d.Handle.
func New(d *tools.Dispatcher, version string) *server.MCPServer {
	s := server.NewMCPServer(
		Name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	for _, t := range d.Router().Tools() {
		s.AddTool(Definition(t), Handler(d))
	}
	return s
}

// Handler adapts the dispatcher to an MCP tool handler. Failures are returned
// as error results, never as protocol errors.
func Handler(d *tools.Dispatcher) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp := d.Handle(ctx, req.Params.Name, tools.Args(req.GetArguments()))
		if resp.IsError {
			return mcp.NewToolResultError(resp.Text), nil
		}
		return mcp.NewToolResultText(resp.Text), nil
	}
}

type property struct {
	kind tools.Kind
	desc string
	max  float64
	ops  []string
	// required lists the operations that require the property.
	required []string
}

// Definition builds the advisory input schema for t. Properties are the union
// of the operations' fields; descriptions note which operations use them.
func Definition(t tools.Tool) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(t.Description)}

	names := t.OperationNames()
	if len(names) > 1 || t.DefaultOp == "" {
		opOpts := []mcp.PropertyOption{
			mcp.Description(operationDescription(t)),
			mcp.Enum(names...),
		}
		if t.DefaultOp == "" {
			opOpts = append(opOpts, mcp.Required())
		}
		opts = append(opts, mcp.WithString(tools.OperationArg, opOpts...))
	}

	var order []string
	props := map[string]*property{}
	for _, op := range t.Operations {
		for _, f := range op.Fields {
			p, ok := props[f.Name]
			if !ok {
				p = &property{kind: f.Kind, desc: f.Description, max: f.Max}
				props[f.Name] = p
				order = append(order, f.Name)
			}
			p.ops = append(p.ops, op.Name)
			if f.Required {
				p.required = append(p.required, op.Name)
			}
		}
	}

	for _, name := range order {
		p := props[name]
		desc := p.desc
		if len(names) > 1 {
			if len(p.required) > 0 {
				desc = fmt.Sprintf("%s (required for %s)", desc, strings.Join(p.required, ", "))
			} else {
				desc = fmt.Sprintf("%s (used by %s)", desc, strings.Join(p.ops, ", "))
			}
		}
		propOpts := []mcp.PropertyOption{mcp.Description(desc)}
		if len(names) == 1 && len(p.required) > 0 {
			propOpts = append(propOpts, mcp.Required())
		}
		switch p.kind {
		case tools.KindNumber:
			propOpts = append(propOpts, mcp.Min(0))
			if p.max > 0 {
				propOpts = append(propOpts, mcp.Max(p.max))
			}
			opts = append(opts, mcp.WithNumber(name, propOpts...))
		default:
			opts = append(opts, mcp.WithString(name, propOpts...))
		}
	}
	return mcp.NewTool(t.Name, opts...)
}

func operationDescription(t tools.Tool) string {
	var b strings.Builder
	b.WriteString("Operation to perform:")
	for _, op := range t.Operations {
		fmt.Fprintf(&b, " '%s' (%s)", op.Name, op.Description)
		if op.Name == t.DefaultOp {
			b.WriteString(" [default]")
		}
	}
	return b.String()
}

// ServeStdio serves s on in and out until ctx is done or in is closed.
// Transport errors are logged through logger.
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer, logger zerolog.Logger) error {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(log.New(logger.With().Str("component", "stdio").Logger(), "", 0))
	logger.Info().Msg("serving MCP over stdio")
	err := stdio.Listen(ctx, in, out)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
