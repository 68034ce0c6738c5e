// Package ui provides user-friendly console feedback on top of the
// structured logs.
package ui

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📢 UserLogger prints run-level feedback for humans and mirrors it to
// zerolog for debugging.
type UserLogger struct {
	log zerolog.Logger
}

// 🎯 NewUserLogger creates a new user logger
func NewUserLogger(ctx context.Context) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
	}
}

// 📝 LogRunStart announces the start of a repair run
func (u *UserLogger) LogRunStart(root string, dryRun bool) {
	msg := fmt.Sprintf("Repairing %s", root)
	if dryRun {
		msg += " (dry-run)"
	}
	pterm.Info.WithPrefix(pterm.Prefix{Text: "🔧"}).Println(msg)
	u.log.Info().Str("root", root).Bool("dry_run", dryRun).Msg("run started")
}

// 📝 LogRunFinish summarizes the run outcome
func (u *UserLogger) LogRunFinish(scanned, modified, errs int) {
	msg := fmt.Sprintf("Scanned %d files, modified %d", scanned, modified)
	switch {
	case errs > 0:
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Printf("%s, %d errors\n", msg, errs)
		u.log.Warn().Int("errors", errs).Msg(msg)
	default:
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(msg)
		u.log.Info().Msg(msg)
	}
}

// 🔍 LogValidation logs validation results
func (u *UserLogger) LogValidation(valid bool, description string, err error) {
	if valid {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(description)
		u.log.Info().Msg(description)
		return
	}
	if err != nil {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(description)
		pterm.Error.Println(err)
		u.log.Error().Err(err).Msg(description)
	} else {
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(description)
		u.log.Warn().Msg(description)
	}
}
