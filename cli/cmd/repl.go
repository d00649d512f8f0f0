package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/stylec/cli/cmd/repl"
	"github.com/ardnew/stylec/log"
)

// Repl compiles setters typed at an interactive prompt.
type Repl struct {
	Target string `default:"Control" help:"Type setters are resolved against" short:"T"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	types, err := loadTypes(ctx)
	if err != nil {
		return err
	}

	logger := log.With(slog.String("command", "repl"))

	session, err := repl.NewSession(types, r.Target, logger)
	if err != nil {
		return err
	}

	cacheDir, ok := kongContextFrom(ctx).Model.Vars()[CacheIdentifier]
	if !ok {
		panic("internal error: cache path undefined")
	}

	return repl.Run(ctx, session, cacheDir, logger)
}
