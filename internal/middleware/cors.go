package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/pricehistory/config"
	"github.com/guttosm/pricehistory/internal/domain/dto"
)

const wildcard = "*"

// allMethods is advertised when the policy allows every method.
var allMethods = []string{
	http.MethodDelete, http.MethodGet, http.MethodHead, http.MethodOptions,
	http.MethodPatch, http.MethodPost, http.MethodPut,
}

// corsMaxAge is how long browsers may cache a preflight answer.
const corsMaxAge = 600

// CORS applies the cross-origin policy in cfg to every request.
//
// Behavior:
//   - Requests without an Origin header pass through untouched.
//   - Allowed origins are echoed back (with Vary: Origin) whenever credentials
//     are allowed, since browsers reject "*" on credentialed requests.
//   - Preflights (OPTIONS + Access-Control-Request-Method) are answered here
//     with 204 and never reach a route. With a "*" header policy the
//     requested headers are echoed back.
//   - A preflight from a disallowed origin gets 400.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	anyOrigin := slices.Contains(cfg.AllowOrigins, wildcard)
	anyHeader := slices.Contains(cfg.AllowHeaders, wildcard)

	methods := cfg.AllowMethods
	if slices.Contains(methods, wildcard) {
		methods = allMethods
	}
	allowMethods := strings.Join(methods, ", ")
	allowHeaders := strings.Join(cfg.AllowHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		preflight := c.Request.Method == http.MethodOptions &&
			c.GetHeader("Access-Control-Request-Method") != ""

		if !anyOrigin && !slices.Contains(cfg.AllowOrigins, origin) {
			if preflight {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Detail: "Disallowed CORS origin"})
				return
			}
			c.Next()
			return
		}

		h := c.Writer.Header()
		if anyOrigin && !cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Origin", wildcard)
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}
		if cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if !preflight {
			c.Next()
			return
		}

		h.Set("Access-Control-Allow-Methods", allowMethods)
		if anyHeader {
			if requested := c.GetHeader("Access-Control-Request-Headers"); requested != "" {
				h.Set("Access-Control-Allow-Headers", requested)
			}
		} else if allowHeaders != "" {
			h.Set("Access-Control-Allow-Headers", allowHeaders)
		}
		h.Set("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))
		c.AbortWithStatus(http.StatusNoContent)
	}
}
