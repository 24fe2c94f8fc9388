package analysis

import (
	"sort"
	"strings"

	"github.com/loamlabs/loam/internal/domain"
)

// knownFrameworks maps dependency-name fragments to framework labels.
var knownFrameworks = map[string]string{
	"gin-gonic/gin":                 "gin",
	"labstack/echo":                 "echo",
	"gofiber/fiber":                 "fiber",
	"go-chi/chi":                    "chi",
	"gorilla/mux":                   "gorilla",
	"spf13/cobra":                   "cobra",
	"django":                        "django",
	"flask":                         "flask",
	"fastapi":                       "fastapi",
	"celery":                        "celery",
	"sqlalchemy":                    "sqlalchemy",
	"react":                         "react",
	"vue":                           "vue",
	"angular":                       "angular",
	"express":                       "express",
	"next":                          "nextjs",
	"nestjs":                        "nestjs",
	"microsoft.aspnetcore":          "aspnetcore",
	"mediatr":                       "mediatr",
	"entityframework":               "entity-framework",
	"microsoft.entityframeworkcore": "entity-framework",
}

// DetectFrameworks derives the zone's framework list from its dependency
// manifests. Purely informational; nothing downstream keys off it.
func DetectFrameworks(deps []domain.Dependency) []string {
	found := make(map[string]bool)
	for _, d := range deps {
		lower := strings.ToLower(d.Name)
		for fragment, label := range knownFrameworks {
			if lower == fragment || strings.Contains(lower, fragment) {
				found[label] = true
			}
		}
	}
	if len(found) == 0 {
		return nil
	}
	out := make([]string, 0, len(found))
	for f := range found {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
