package handlers

import (
	"net/http"

	"smartflow/internal/authentication"
	"smartflow/internal/middlewares"
	"smartflow/internal/web"

	"github.com/go-chi/chi/v5"
)

func GETRootHandler(ctx *middlewares.AppContext) {
	ctx.Redirect(authentication.DefaultNextPath, http.StatusFound)
}

func GETDashboardHandler(ctx *middlewares.AppContext) {
	ctx.Render(http.StatusOK, web.PageDashboard, "Dashboard", web.DashboardView{})
}

func GETStyleguideHandler(ctx *middlewares.AppContext) {
	ctx.Render(http.StatusOK, web.PageStyleguide, "Styleguide", web.StyleguideView{
		Navigation: web.Navigation(),
		Tokens:     &web.Tokens,
	})
}

func GETStyleguideComponentHandler(ctx *middlewares.AppContext) {
	slug := chi.URLParam(ctx.Request, "slug")

	component, ok := web.LookupComponent(slug)
	if !ok {
		ctx.Render(http.StatusNotFound, web.PageNotFound, "Not found", web.NotFoundView{
			Message: "There is no styleguide page for that component.",
		})
		return
	}

	ctx.Render(http.StatusOK, web.ComponentPage(component.Slug), component.Name, web.StyleguideView{
		Navigation: web.Navigation(),
		Component:  &component,
	})
}

func NotFoundHandler(ctx *middlewares.AppContext) {
	ctx.Render(http.StatusNotFound, web.PageNotFound, "Not found", web.NotFoundView{
		Message: "The page you are looking for does not exist.",
	})
}
