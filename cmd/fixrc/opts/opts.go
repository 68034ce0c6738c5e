// Package opts carries the dependencies shared by every fixrc command.
package opts

import (
	"github.com/walteh/fixrc/cmd/fixrc/ui"
	"github.com/walteh/fixrc/pkg/config"
	"github.com/walteh/fixrc/pkg/rule"
)

// 🔧 RootOpts holds initialized dependencies for subcommands
type RootOpts struct {
	// Config is the loaded run configuration
	Config *config.Config
	// Registry is the validated rule registry (built-ins plus any
	// user-defined patterns)
	Registry *rule.Registry
	// UserLogger prints user-facing feedback
	UserLogger *ui.UserLogger
}
