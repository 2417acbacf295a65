package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/guestcode"
	"github.com/trezcool/daftar/core/report"
)

const guestCodeHeader = "X-Guest-Code"

type guestCodeApi struct {
	owners core.OwnerResolver
	svc    *guestcode.Service
}

func registerGuestCodeAPI(g *echo.Group, owners core.OwnerResolver, svc *guestcode.Service) {
	api := guestCodeApi{owners: owners, svc: svc}

	gg := g.Group("/guest-codes")
	gg.GET("/active", api.active)
	gg.POST("", api.generate)
	gg.DELETE("", api.deactivate)
}

type GuestCodeRequest struct {
	Code string `json:"code"`
}

// active answers `null` when the owner has no active code.
func (api *guestCodeApi) active(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	gc, err := api.svc.FetchActive(ctx.Request().Context(), owner)
	if err != nil {
		return errors.Wrap(err, "fetching active guest code")
	}
	return ctx.JSON(http.StatusOK, gc)
}

func (api *guestCodeApi) generate(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	var data GuestCodeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GuestCodeRequest")
	}

	gc, err := api.svc.Generate(ctx.Request().Context(), owner, data.Code)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, gc)
}

func (api *guestCodeApi) deactivate(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	if err := api.svc.DeactivateAll(ctx.Request().Context(), owner); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Guest access: no JWT, the code itself authenticates.

type guestApi struct {
	codes   *guestcode.Service
	reports *report.Service
}

func registerGuestAPI(g *echo.Group, codes *guestcode.Service, reports *report.Service) {
	api := guestApi{codes: codes, reports: reports}

	gg := g.Group("/guest")
	gg.POST("/verify", api.verify)
	gg.GET("/summary", api.summary)
}

type VerifyResponse struct {
	Valid bool `json:"valid"`
}

func (api *guestApi) verify(ctx echo.Context) error {
	var data GuestCodeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GuestCodeRequest")
	}

	valid, err := api.codes.Verify(ctx.Request().Context(), data.Code)
	if err != nil {
		return errors.Wrap(err, "verifying guest code")
	}
	return ctx.JSON(http.StatusOK, VerifyResponse{Valid: valid})
}

// summary serves the anonymized payments of the code's owner.
func (api *guestApi) summary(ctx echo.Context) error {
	gc, err := api.codes.Lookup(ctx.Request().Context(), ctx.Request().Header.Get(guestCodeHeader))
	if err != nil {
		if errors.Is(err, guestcode.ErrNotFound) {
			return errInvalidGuestCode
		}
		return errors.Wrap(err, "looking up guest code")
	}
	month, err := monthParam(ctx)
	if err != nil {
		return err
	}

	summary, err := api.reports.GuestSummary(ctx.Request().Context(), gc.OwnerID, month)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

// monthParam reads the `month` query param: 1-12, or 0 / absent for every month.
func monthParam(ctx echo.Context) (int, error) {
	raw := ctx.QueryParam("month")
	if raw == "" {
		return 0, nil
	}
	month, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.NewFieldError("month", "month must be a number")
	}
	return month, nil
}
