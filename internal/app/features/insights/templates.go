// internal/app/features/insights/templates.go
package insights

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "insights",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
