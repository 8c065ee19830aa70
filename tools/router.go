package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spachava753/deskmcp/fault"
)

// OperationArg is the argument naming the operation of a multi-operation tool.
const OperationArg = "operation"

// Handler runs a validated operation and returns the rendered result.
type Handler func(ctx context.Context, values Values) (string, error)

// Operation is one verb of a tool with its own argument set.
type Operation struct {
	Name        string
	Description string
	Fields      []Field
	Run         Handler
}

// Tool is a named group of operations. A tool with a DefaultOp accepts calls
// without an operation argument.
type Tool struct {
	Name        string
	Description string
	DefaultOp   string
	Operations  []Operation
}

// Operation returns the operation named name.
func (t Tool) Operation(name string) (Operation, bool) {
	for _, op := range t.Operations {
		if op.Name == name {
			return op, true
		}
	}
	return Operation{}, false
}

// OperationNames lists the tool's operations in declaration order.
func (t Tool) OperationNames() []string {
	names := make([]string, 0, len(t.Operations))
	for _, op := range t.Operations {
		names = append(names, op.Name)
	}
	return names
}

// Router validates arguments and selects the handler for a tool call.
type Router struct {
	tools map[string]Tool
}

// NewRouter returns a router over tools. Later tools replace earlier ones with
// the same name.
func NewRouter(tools ...Tool) *Router {
	r := &Router{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.tools[t.Name] = t
	}
	return r
}

// Tools returns the registered tools sorted by name.
func (r *Router) Tools() []Tool {
	tools := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		tools = append(tools, t)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// Route validates args for the selected operation of tool and runs it. No
// handler runs unless validation succeeds.
func (r *Router) Route(ctx context.Context, tool string, args Args) (string, error) {
	t, ok := r.tools[tool]
	if !ok {
		return "", &fault.Error{Kind: fault.KindUnknownTool, Message: fmt.Sprintf("unknown tool %q", tool)}
	}
	op, err := t.resolve(args)
	if err != nil {
		return "", err
	}
	values, err := Validate(op.Fields, args)
	if err != nil {
		var fe *fault.Error
		if errors.As(err, &fe) {
			fe.Domain = t.Name
		}
		return "", err
	}
	return op.Run(ctx, values)
}

func (t Tool) resolve(args Args) (Operation, error) {
	name := t.DefaultOp
	if raw, ok := args[OperationArg]; ok && raw != nil {
		s, isString := raw.(string)
		if !isString {
			return Operation{}, &fault.Error{Kind: fault.KindValidation, Domain: t.Name, Field: OperationArg, Message: fmt.Sprintf("argument %q must be a string", OperationArg)}
		}
		if s = strings.TrimSpace(s); s != "" {
			name = s
		}
	}
	if name == "" {
		return Operation{}, &fault.Error{
			Kind:    fault.KindValidation,
			Domain:  t.Name,
			Field:   OperationArg,
			Message: fmt.Sprintf("missing required argument %q (one of %s)", OperationArg, strings.Join(t.OperationNames(), ", ")),
		}
	}
	op, ok := t.Operation(name)
	if !ok {
		return Operation{}, &fault.Error{
			Kind:    fault.KindUnknownOperation,
			Domain:  t.Name,
			Message: fmt.Sprintf("unknown operation %q (one of %s)", name, strings.Join(t.OperationNames(), ", ")),
		}
	}
	return op, nil
}
