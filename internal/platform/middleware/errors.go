package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// ErrorHandler renders errors as {"error": "..."}. Errors that are not
// *echo.HTTPError are logged and reported as a generic server error so that
// internal details never reach the client.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := "server error"

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			switch m := he.Message.(type) {
			case string:
				msg = m
			case error:
				msg = m.Error()
			case nil:
				msg = http.StatusText(code)
			default:
				msg = fmt.Sprint(m)
			}
			if code >= 500 && he.Internal != nil {
				logger.Error().Err(he.Internal).Str("request_id", GetRequestID(c)).Msg("internal error")
			}
		} else {
			logger.Error().Err(err).Str("request_id", GetRequestID(c)).Msg("unhandled error")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, ErrorBody{Error: msg})
		}
		if werr != nil {
			logger.Error().Err(werr).Msg("write error response")
		}
	}
}
