package pages

import (
	"strconv"

	"github.com/wellnash/wellnash/internal/authform"
	"github.com/wellnash/wellnash/internal/view/dto/auth"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	h "maragu.dev/gomponents/html"
)

// LoginCardID is the element htmx swaps when a submission fails.
const LoginCardID = "auth-card"

// Login is the full sign-in/sign-up page content.
func Login(data auth.LoginData) g.Node {
	return h.Div(
		h.Class("auth-page"),
		LoginCard(data),
	)
}

// LoginCard is the swappable part of the page: brand, copy, error and form.
func LoginCard(data auth.LoginData) g.Node {
	return h.Div(
		h.ID(LoginCardID),
		h.Class("auth-card"),
		h.Div(
			h.Class("brand"),
			h.Span(h.Class("brand-icon"), g.Attr("aria-hidden", "true"), g.Text("◎")),
			h.H2(h.Class("brand-name"), g.Text("Wellnash")),
		),
		h.H1(h.Class("auth-title"), g.Text(data.Copy.Title)),
		h.P(h.Class("auth-subtitle"), g.Text(data.Copy.Subtitle)),
		g.If(data.ErrorMessage != "",
			h.Div(
				h.Class("auth-error"),
				g.Attr("role", "alert"),
				h.Span(g.Text(data.ErrorMessage)),
			),
		),
		loginForm(data),
		loadingOverlay(),
		h.Div(
			h.Class("auth-switch"),
			h.P(
				g.Text(data.Copy.SwitchPrompt+" "),
				h.A(h.Href(data.Copy.SwitchHref), h.Class("link"), g.Text(data.Copy.SwitchLabel)),
			),
		),
	)
}

func loginForm(data auth.LoginData) g.Node {
	return h.Form(
		h.Method("post"),
		h.Action(data.Action),
		h.Class("auth-form"),
		hx.Post(data.Action),
		hx.Target("#"+LoginCardID),
		hx.Swap("outerHTML"),
		g.Attr("hx-indicator", "#"+LoginCardID),
		g.Attr("hx-disabled-elt", "find button[type='submit']"),
		h.Input(h.Type("hidden"), h.Name("form_id"), h.Value(data.FormID)),
		h.Div(
			h.Class("field"),
			h.Label(h.For("email"), g.Text("Email")),
			h.Input(
				h.ID("email"),
				h.Name("email"),
				h.Type("email"),
				h.Placeholder("your.email@example.com"),
				h.Value(data.Email),
				h.AutoComplete("email"),
				h.Required(),
			),
		),
		h.Div(
			h.Class("field"),
			h.Label(h.For("password"), g.Text("Password")),
			h.Input(
				h.ID("password"),
				h.Name("password"),
				h.Type("password"),
				h.Placeholder("********"),
				g.Attr("minlength", strconv.Itoa(authform.MinPasswordLength)),
				h.Required(),
			),
		),
		h.Button(
			h.Type("submit"),
			h.Class("btn btn-primary"),
			g.If(data.IsLoading, h.Disabled()),
			h.Span(h.Class("idle-label"), g.Text(data.Copy.Submit)),
			h.Span(
				h.Class("htmx-indicator loading-label"),
				h.Span(h.Class("spinner"), g.Attr("aria-hidden", "true")),
				g.Text(data.Copy.Loading),
			),
		),
	)
}

// loadingOverlay covers the card while an attempt is pending. htmx shows it
// by putting htmx-request on the card (see hx-indicator on the form).
func loadingOverlay() g.Node {
	return h.Div(
		h.Class("htmx-indicator auth-overlay"),
		g.Attr("role", "status"),
		g.Attr("aria-live", "polite"),
		h.Span(h.Class("spinner spinner-lg"), g.Attr("aria-hidden", "true")),
		h.P(g.Text("Loading...")),
	)
}
