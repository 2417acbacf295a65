package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/daftar/core"
)

var (
	errUnauthorized     = echo.NewHTTPError(http.StatusUnauthorized, "owner not authenticated")
	errInvalidGuestCode = echo.NewHTTPError(http.StatusUnauthorized, "invalid guest code")
	errHttpNotFound     = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code    int
			message interface{}

			httpErr *echo.HTTPError
			vErr    *core.ValidationError
			fErrs   validator.ValidationErrors
		)

		switch {
		case errors.As(err, &httpErr):
			if httpErr.Code == middleware.ErrJWTMissing.Code && httpErr.Message == middleware.ErrJWTMissing.Message {
				code = http.StatusUnauthorized
				message = httpErr.Message
				break
			}
			if httpErr.Internal != nil {
				if herr, ok := httpErr.Internal.(*echo.HTTPError); ok {
					httpErr = herr
				}
			}
			code = httpErr.Code
			message = httpErr.Message
		case errors.Is(err, core.ErrUnauthorized):
			code = http.StatusUnauthorized
			message = core.ErrUnauthorized.Error()
		case errors.Is(err, core.ErrNotFound):
			code = http.StatusNotFound
			message = notFoundMessage(err)
		case errors.As(err, &fErrs):
			fldErrs := make(map[string]string, len(fErrs))
			for _, fe := range fErrs {
				fldErrs[fe.Field()] = fe.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case errors.As(err, &vErr):
			if vErr.Fields != nil {
				fldErrs := make(map[string]string, len(vErr.Fields))
				for _, fe := range vErr.Fields {
					fldErrs[fe.Field] = fe.Error
				}
				message = fldErrs
			} else {
				message = vErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var owner core.OwnerID
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				owner = claims.Owner()
			}
			logger.Error(msg, errors.Wrap(err, msg), owner)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// notFoundMessage returns the domain's not-found text, e.g. "student not found".
func notFoundMessage(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if errors.Unwrap(e) == core.ErrNotFound {
			return e.Error()
		}
	}
	return errHttpNotFound.Message.(string)
}
