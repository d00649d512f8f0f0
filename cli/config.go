package cli

import (
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ardnew/stylec/cli/cmd"
	"github.com/ardnew/stylec/log"
	"github.com/ardnew/stylec/pkg"
)

// ErrConfig is returned when a configuration source cannot be read.
var ErrConfig = cmd.NewError("load configuration")

// projectConfig is the name of the configuration file read from the working
// directory. Its values override the user configuration file.
const projectConfig = pkg.Name + ".yaml"

// envPrefix prefixes environment variables that set flag values, for example
// STYLEC_LOG_LEVEL for --log-level.
var envPrefix = strings.ToUpper(pkg.Name) + "_"

// defaultConfig returns flag values that cannot be expressed as static kong
// defaults.
func defaultConfig() map[string]any {
	return map[string]any{
		"jobs": runtime.NumCPU(),
	}
}

// loadConfig layers configuration sources from lowest to highest precedence:
// defaults, each existing file in paths (YAML), then environment variables.
// Command-line flags override all of them.
func loadConfig(defaults map[string]any, paths ...string) (*config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, ErrConfig.Wrap(err)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}

		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, ErrConfig.With(slog.String("file", path)).Wrap(err)
		}

		log.Debug("loaded configuration", slog.String("file", path))
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)

		return strings.ReplaceAll(strings.ToLower(s), "_", "-")
	}), nil)
	if err != nil {
		return nil, ErrConfig.Wrap(err)
	}

	return &config{k: k}, nil
}

// config implements [kong.Resolver] over a layered koanf instance.
type config struct {
	k *koanf.Koanf
}

// Validate implements [kong.Resolver].
func (*config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver]. Keys may spell a flag with hyphens
// (log-level) or underscores (log_level).
func (c *config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	for _, key := range []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")} {
		if !c.k.Exists(key) {
			continue
		}

		// Kong parses numbers from strings.
		switch v := c.k.Get(key).(type) {
		case int:
			return strconv.Itoa(v), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case uint64:
			return strconv.FormatUint(v, 10), nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		default:
			return v, nil
		}
	}

	return nil, nil
}
