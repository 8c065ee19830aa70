package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/nalgeon/be"

	"github.com/spachava753/deskmcp/fault"
)

func errorsAs(err error, target **fault.Error) bool {
	return errors.As(err, target)
}

func echoTool(ran *int) Tool {
	return Tool{
		Name:      "echo",
		DefaultOp: "say",
		Operations: []Operation{
			{
				Name:   "say",
				Fields: []Field{{Name: "text", Kind: KindString, Required: true}},
				Run: func(ctx context.Context, v Values) (string, error) {
					*ran++
					return v["text"].(string), nil
				},
			},
			{
				Name: "shout",
				Run: func(ctx context.Context, v Values) (string, error) {
					*ran++
					return "HEY", nil
				},
			},
		},
	}
}

func TestRouteDefaultOperation(t *testing.T) {
	var ran int
	r := NewRouter(echoTool(&ran))

	out, err := r.Route(context.Background(), "echo", Args{"text": "hi"})
	be.Err(t, err, nil)
	be.Equal(t, out, "hi")

	out, err = r.Route(context.Background(), "echo", Args{"operation": "shout"})
	be.Err(t, err, nil)
	be.Equal(t, out, "HEY")
	be.Equal(t, ran, 2)
}

func TestRouteErrors(t *testing.T) {
	var ran int
	echo := echoTool(&ran)
	noDefault := echo
	noDefault.Name = "strict"
	noDefault.DefaultOp = ""
	r := NewRouter(echo, noDefault)
	ctx := context.Background()

	_, err := r.Route(ctx, "nope", Args{})
	be.True(t, fault.Is(err, fault.KindUnknownTool))

	_, err = r.Route(ctx, "echo", Args{"operation": "whisper", "text": "x"})
	be.True(t, fault.Is(err, fault.KindUnknownOperation))

	_, err = r.Route(ctx, "echo", Args{"operation": 3.0})
	be.True(t, fault.Is(err, fault.KindValidation))

	var fe *fault.Error
	_, err = r.Route(ctx, "strict", Args{"text": "x"})
	be.True(t, errorsAs(err, &fe))
	be.Equal(t, fe.Kind, fault.KindValidation)
	be.Equal(t, fe.Field, OperationArg)

	_, err = r.Route(ctx, "echo", Args{})
	be.True(t, errorsAs(err, &fe))
	be.Equal(t, fe.Field, "text")
	be.Equal(t, fe.Domain, "echo")

	be.Equal(t, ran, 0)
}

func TestToolsSorted(t *testing.T) {
	var ran int
	a := echoTool(&ran)
	a.Name = "b"
	c := echoTool(&ran)
	c.Name = "a"
	tools := NewRouter(a, c).Tools()
	be.Equal(t, len(tools), 2)
	be.Equal(t, tools[0].Name, "a")
	be.Equal(t, tools[0].OperationNames(), []string{"say", "shout"})
}
