package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/balance"
	"github.com/trezcool/daftar/core/group"
)

type groupApi struct {
	owners   core.OwnerResolver
	svc      *group.Service
	balances *balance.Service
}

func registerGroupAPI(g *echo.Group, owners core.OwnerResolver, svc *group.Service, balances *balance.Service) {
	api := groupApi{owners: owners, svc: svc, balances: balances}

	gg := g.Group("/groups")
	gg.GET("", api.query)
	gg.POST("", api.create)
	gg.GET("/:id", api.retrieve)
	gg.PATCH("/:id", api.update)
	gg.DELETE("/:id", api.destroy)
	gg.PUT("/:id/students", api.assignStudents)
	gg.GET("/:id/balance", api.balance)
	gg.POST("/:id/settle", api.settle)
}

type AssignStudentsRequest struct {
	StudentIDs []string `json:"student_ids"`
}

func (api *groupApi) query(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	groups, err := api.svc.Search(ctx.Request().Context(), owner, ctx.QueryParam("search"))
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *groupApi) create(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}

	grp, err := api.svc.Create(ctx.Request().Context(), owner, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	grp, err := api.svc.GetByID(ctx.Request().Context(), owner, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) update(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	var data group.UpdateGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGroup")
	}

	grp, err := api.svc.Update(ctx.Request().Context(), owner, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) destroy(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), owner, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting group")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *groupApi) assignStudents(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	var data AssignStudentsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignStudentsRequest")
	}

	if err := api.svc.AssignStudents(ctx.Request().Context(), owner, ctx.Param("id"), data.StudentIDs); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *groupApi) balance(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	bal, err := api.balances.Get(ctx.Request().Context(), owner, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting group balance")
	}
	return ctx.JSON(http.StatusOK, bal)
}

func (api *groupApi) settle(ctx echo.Context) error {
	owner, err := resolveOwner(ctx, api.owners)
	if err != nil {
		return err
	}
	var data balance.Settlement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Settlement")
	}
	data.GroupID = ctx.Param("id")

	res, err := api.balances.Settle(ctx.Request().Context(), owner, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}
