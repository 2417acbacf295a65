package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/report"
)

type reportApi struct {
	owners core.OwnerResolver
	svc    *report.Service
}

func registerReportAPI(g *echo.Group, owners core.OwnerResolver, svc *report.Service) {
	api := reportApi{owners: owners, svc: svc}

	rg := g.Group("/reports")
	rg.GET("/dashboard", api.dashboard)
	rg.GET("/monthly", api.monthly)
	rg.GET("/insights", api.insights)
}

func (api *reportApi) dashboard(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	month, err := monthParam(ctx)
	if err != nil {
		return err
	}

	dash, err := api.svc.Dashboard(ctx.Request().Context(), owner, month)
	if err != nil {
		return errors.Wrap(err, "building dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *reportApi) monthly(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	monthly, err := api.svc.Monthly(ctx.Request().Context(), owner)
	if err != nil {
		return errors.Wrap(err, "building monthly report")
	}
	return ctx.JSON(http.StatusOK, monthly)
}

func (api *reportApi) insights(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	insights, err := api.svc.Insights(ctx.Request().Context(), owner)
	if err != nil {
		return errors.Wrap(err, "building insights")
	}
	return ctx.JSON(http.StatusOK, insights)
}
