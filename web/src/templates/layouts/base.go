package layouts

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/wellnash/wellnash/internal/view"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

const htmxSrc = "https://unpkg.com/htmx.org@1.9.12"

// Base wraps page content in the HTML document shell with flash messages.
func Base(title string, flashes view.Flashes, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		doc := h.Doctype(
			h.HTML(
				h.Lang("en"),
				h.Head(
					h.Meta(h.Charset("utf-8")),
					h.Meta(h.Name("viewport"), h.Content("width=device-width, initial-scale=1")),
					h.TitleEl(g.Text(CalculateTitle(title))),
					h.Link(h.Rel("stylesheet"), h.Href("/static/app.css")),
					h.Script(h.Src(htmxSrc), h.Defer()),
				),
				h.Body(
					h.Class("app"),
					h.Div(h.Class("backdrop")),
					flashList(flashes),
					h.Main(
						h.Class("container"),
						view.Node(ctx, content),
					),
				),
			),
		)
		return doc.Render(w)
	})
}

func flashList(flashes view.Flashes) g.Node {
	if flashes.Empty() {
		return nil
	}
	return h.Div(
		h.Class("flashes"),
		g.Map(flashes.Success, func(msg string) g.Node {
			return h.P(h.Class("flash flash-success"), g.Attr("role", "status"), g.Text(msg))
		}),
		g.Map(flashes.Error, func(msg string) g.Node {
			return h.P(h.Class("flash flash-error"), g.Attr("role", "alert"), g.Text(msg))
		}),
	)
}
