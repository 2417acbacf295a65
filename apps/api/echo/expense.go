package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/expense"
)

type expenseApi struct {
	owners core.OwnerResolver
	svc    *expense.Service
}

func registerExpenseAPI(g *echo.Group, owners core.OwnerResolver, svc *expense.Service) {
	api := expenseApi{owners: owners, svc: svc}

	eg := g.Group("/expenses")
	eg.GET("", api.query)
	eg.POST("", api.create)
	eg.GET("/:id", api.retrieve)
	eg.PUT("/:id", api.update)
	eg.DELETE("/:id", api.destroy)
}

func (api *expenseApi) query(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	filter := new(expense.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []expense.Expense{})
	}

	expenses, err := api.svc.Search(ctx.Request().Context(), owner, *filter)
	if err != nil {
		return errors.Wrap(err, "querying expenses")
	}
	return ctx.JSON(http.StatusOK, expenses)
}

func (api *expenseApi) create(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	var data expense.NewExpense
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExpense")
	}

	exp, err := api.svc.Create(ctx.Request().Context(), owner, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, exp)
}

func (api *expenseApi) retrieve(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	exp, err := api.svc.GetByID(ctx.Request().Context(), owner, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, exp)
}

// update replaces every field of the expense.
func (api *expenseApi) update(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	var data expense.NewExpense
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExpense")
	}

	exp, err := api.svc.Replace(ctx.Request().Context(), owner, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, exp)
}

func (api *expenseApi) destroy(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), owner, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting expense")
	}
	return ctx.NoContent(http.StatusNoContent)
}
