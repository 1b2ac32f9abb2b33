package version

import (
	"os/exec"
	"runtime"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lk16/reversi/internal/models"
)

// Version is computed once at startup.
var Version = models.VersionResponse{
	Commit:    gitCommit(),
	GoVersion: runtime.Version(),
}

func gitCommit() string {
	output, err := exec.Command("git", "rev-parse", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(output))
}

func SetupRoutes(app *fiber.App) {
	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(Version)
	})
}
