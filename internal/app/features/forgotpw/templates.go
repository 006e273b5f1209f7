// internal/app/features/forgotpw/templates.go
package forgotpw

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "forgotpw",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
