package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
)

// Templ exposes a gomponents node as a templ.Component so page content built
// with gomponents can be handed to templ layouts and the renderer.
func Templ(node g.Node) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return node.Render(w)
	})
}

// Node embeds a templ.Component inside a gomponents tree, rendering it with
// ctx so request-scoped values still reach it.
func Node(ctx context.Context, component templ.Component) g.Node {
	return g.NodeFunc(func(w io.Writer) error {
		return component.Render(ctx, w)
	})
}
