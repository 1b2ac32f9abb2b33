package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// Logging logs method, path, status and latency of every request. Websocket connections
// stay open for the whole game, so they are logged by the ws handler instead.
func Logging() fiber.Handler {
	return logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/ws")
		},
		Format:     "${time} | ${status} | ${latency} | ${method} | ${path}${query}\n",
		TimeFormat: time.DateTime,
		TimeZone:   "Local",
		CustomTags: map[string]logger.LogFunc{
			"latency": func(output logger.Buffer, _ *fiber.Ctx, data *logger.Data, _ string) (int, error) {
				return fmt.Fprintf(output, "%7.1fms", float64(data.Stop.Sub(data.Start).Microseconds())/1000)
			},
			"query": func(output logger.Buffer, c *fiber.Ctx, _ *logger.Data, _ string) (int, error) {
				query := string(c.Request().URI().QueryString())
				if query == "" {
					return 0, nil
				}
				return output.WriteString("?" + query)
			},
		},
	})
}
