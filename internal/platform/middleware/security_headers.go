package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// docsCSP allows the Swagger UI page to pull its assets from the CDN.
const docsCSP = "default-src 'none'; script-src 'self' 'unsafe-inline' https://unpkg.com; " +
	"style-src 'self' 'unsafe-inline' https://unpkg.com; img-src 'self' data: https://unpkg.com; " +
	"connect-src 'self'; frame-ancestors 'none'"

// SecurityHeaders sets hardening response headers. Responses under docsPrefix
// get a CSP that lets the documentation page load.
func SecurityHeaders(docsPrefix string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-XSS-Protection", "0")
			if docsPrefix != "" && strings.HasPrefix(c.Request().URL.Path, docsPrefix) {
				h.Set("Content-Security-Policy", docsCSP)
			} else {
				h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			}
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			// Records are clinical data; never cache them.
			h.Set("Cache-Control", "no-store")

			return next(c)
		}
	}
}
