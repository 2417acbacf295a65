package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/payment"
)

type paymentApi struct {
	owners core.OwnerResolver
	svc    *payment.Service
}

func registerPaymentAPI(g *echo.Group, owners core.OwnerResolver, svc *payment.Service) {
	api := paymentApi{owners: owners, svc: svc}

	pg := g.Group("/payments")
	pg.GET("", api.query)
	pg.POST("", api.create)
	pg.GET("/:id", api.retrieve)
	pg.PUT("/:id", api.update)
	pg.DELETE("/:id", api.destroy)
}

func (api *paymentApi) query(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	filter := new(payment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []payment.Payment{})
	}

	payments, err := api.svc.Search(ctx.Request().Context(), owner, *filter)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *paymentApi) create(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	var data payment.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}

	p, err := api.svc.Create(ctx.Request().Context(), owner, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *paymentApi) retrieve(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	p, err := api.svc.GetByID(ctx.Request().Context(), owner, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

// update replaces every field of the payment.
func (api *paymentApi) update(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	var data payment.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}

	p, err := api.svc.Replace(ctx.Request().Context(), owner, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *paymentApi) destroy(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), owner, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting payment")
	}
	return ctx.NoContent(http.StatusNoContent)
}
