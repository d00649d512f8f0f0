package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/stylec/log"
	"github.com/ardnew/stylec/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	buf, err := yaml.MarshalWithOptions(
		i.values(ktx),
		yaml.Indent(defaultConfigIndent),
		yaml.IndentSequence(true),
	)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	err = os.WriteFile(confPath, buf, 0o600)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// values collects the current value of every configurable flag, application
// flags first and then each command's flags, keyed by flag name.
func (i *Init) values(ktx *kong.Context) yaml.MapSlice {
	var out yaml.MapSlice

	ignore := []string{"help", "version", profile.Tag}
	seen := map[string]bool{}

	nodes := append([]*kong.Node{ktx.Model.Node}, ktx.Model.Children...)
	for _, node := range nodes {
		if node == ktx.Selected() {
			continue
		}

		for _, flag := range node.Flags {
			if flag.Hidden || seen[flag.Name] ||
				slices.ContainsFunc(ignore, func(s string) bool {
					return strings.HasPrefix(flag.Name, s)
				}) {
				continue
			}

			seen[flag.Name] = true

			if v := flagValue(ktx.FlagValue(flag)); v != nil {
				out = append(out, yaml.MapItem{Key: flag.Name, Value: v})
			}
		}
	}

	return out
}

// flagValue converts a flag value to a plain YAML value, or nil if unset.
func flagValue(val any) any {
	switch v := val.(type) {
	case nil:
		return nil

	case bool, int, int64, uint, uint64, float64:
		return v

	case string:
		if v == "" {
			return nil
		}

		return v

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	default:
		// Named string types such as log levels.
		if s := fmt.Sprint(v); s != "" {
			return s
		}

		return nil
	}
}
