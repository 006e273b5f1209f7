// internal/app/features/screenshots/templates.go
package screenshots

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "screenshots",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
