package pages

import (
	"github.com/wellnash/wellnash/internal/view/dto/auth"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// Dashboard is the landing page after a successful sign-in.
func Dashboard(data auth.DashboardData) g.Node {
	return h.Section(
		h.Class("panel"),
		h.H1(g.Text("Your wellness dashboard")),
		h.P(h.Class("muted"), g.Textf("Signed in as %s", data.Email)),
		nav(),
	)
}

// Settings is a second protected page, reachable through ?next=/settings.
func Settings(data auth.DashboardData) g.Node {
	return h.Section(
		h.Class("panel"),
		h.H1(g.Text("Settings")),
		h.P(h.Class("muted"), g.Textf("Account email: %s", data.Email)),
		nav(),
	)
}

func nav() g.Node {
	return h.Nav(
		h.Class("panel-nav"),
		h.A(h.Href("/dashboard"), g.Text("Dashboard")),
		h.A(h.Href("/settings"), g.Text("Settings")),
		h.A(h.Href("/logout"), g.Text("Log out")),
	)
}
