package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nalgeon/be"
	"github.com/rs/zerolog"

	"github.com/spachava753/deskmcp/tools"
)

func testTools() []tools.Tool {
	echo := func(ctx context.Context, v tools.Values) (string, error) {
		return "ok:" + v["text"].(string), nil
	}
	return []tools.Tool{
		{
			Name:        "single",
			Description: "one operation",
			DefaultOp:   "lookup",
			Operations: []tools.Operation{{
				Name:   "lookup",
				Fields: []tools.Field{{Name: "text", Kind: tools.KindString, Required: true, Description: "Text"}},
				Run:    echo,
			}},
		},
		{
			Name:        "multi",
			Description: "two operations",
			Operations: []tools.Operation{
				{
					Name:        "read",
					Description: "read things",
					Fields: []tools.Field{
						{Name: "text", Kind: tools.KindString, Required: true, Description: "Text"},
						{Name: "limit", Kind: tools.KindNumber, Max: 50, Description: "Limit"},
					},
					Run: echo,
				},
				{
					Name:        "write",
					Description: "write things",
					Fields:      []tools.Field{{Name: "text", Kind: tools.KindString, Required: true, Description: "Text"}},
					Run:         echo,
				},
			},
		},
	}
}

func schemaOf(t *testing.T, tool mcp.Tool) map[string]any {
	t.Helper()
	raw, err := json.Marshal(tool)
	be.Err(t, err, nil)
	var out map[string]any
	be.Err(t, json.Unmarshal(raw, &out), nil)
	return out["inputSchema"].(map[string]any)
}

func TestDefinitionSingleOperation(t *testing.T) {
	schema := schemaOf(t, Definition(testTools()[0]))
	props := schema["properties"].(map[string]any)
	_, hasOp := props["operation"]
	be.True(t, !hasOp)
	be.Equal(t, props["text"].(map[string]any)["type"], any("string"))
	be.Equal(t, schema["required"], any([]any{"text"}))
}

func TestDefinitionMultipleOperations(t *testing.T) {
	tool := Definition(testTools()[1])
	be.Equal(t, tool.Name, "multi")

	schema := schemaOf(t, tool)
	props := schema["properties"].(map[string]any)

	op := props["operation"].(map[string]any)
	be.Equal(t, op["enum"], any([]any{"read", "write"}))
	be.True(t, strings.Contains(op["description"].(string), "'read' (read things)"))
	be.Equal(t, schema["required"], any([]any{"operation"}))

	text := props["text"].(map[string]any)
	be.True(t, strings.HasSuffix(text["description"].(string), "(required for read, write)"))

	limit := props["limit"].(map[string]any)
	be.Equal(t, limit["type"], any("number"))
	be.Equal(t, limit["minimum"], any(0.0))
	be.Equal(t, limit["maximum"], any(50.0))
	be.True(t, strings.HasSuffix(limit["description"].(string), "(used by read)"))
}

func call(t *testing.T, d *tools.Dispatcher, name string, args map[string]any) map[string]any {
	t.Helper()
	s := New(d, "test")
	req, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
	})
	be.Err(t, err, nil)

	raw, err := json.Marshal(s.HandleMessage(context.Background(), req))
	be.Err(t, err, nil)
	var resp map[string]any
	be.Err(t, json.Unmarshal(raw, &resp), nil)
	result, ok := resp["result"].(map[string]any)
	be.True(t, ok)
	return result
}

func textOf(result map[string]any) string {
	content := result["content"].([]any)
	return content[0].(map[string]any)["text"].(string)
}

func TestToolCall(t *testing.T) {
	d := tools.NewDispatcher(tools.NewRouter(testTools()...), nil, zerolog.Nop())

	result := call(t, d, "multi", map[string]any{"operation": "write", "text": "hi"})
	be.Equal(t, textOf(result), "ok:hi")
	isError, _ := result["isError"].(bool)
	be.True(t, !isError)

	result = call(t, d, "multi", map[string]any{"operation": "write"})
	be.Equal(t, result["isError"], any(true))
	be.True(t, strings.Contains(textOf(result), `"text"`))
}

func TestToolsList(t *testing.T) {
	d := tools.NewDispatcher(tools.NewRouter(testTools()...), nil, zerolog.Nop())
	s := New(d, "test")

	req := []byte(`{"jsonrpc":"2.0","id":2,"method":"tools/list","params":{}}`)
	raw, err := json.Marshal(s.HandleMessage(context.Background(), req))
	be.Err(t, err, nil)

	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	be.Err(t, json.Unmarshal(raw, &resp), nil)
	be.Equal(t, len(resp.Result.Tools), 2)
}
