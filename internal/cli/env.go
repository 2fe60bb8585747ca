package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFileOverrideVar names a variable that, when set, takes precedence over --env.
const EnvFileOverrideVar = "SHLOKA_ENV_FILE"

// ErrNoEnvFile is returned when none of the candidate .env files could be loaded.
var ErrNoEnvFile = errors.New("no env file loaded")

// EnvLoader loads .env files with a predictable override order.
type EnvLoader struct {
	value       *string
	defaultPath string
}

// AddEnvFlag registers an --env flag and returns an EnvLoader.
func AddEnvFlag(fs *flag.FlagSet, defaultPath, description string) *EnvLoader {
	if fs == nil {
		fs = flag.CommandLine
	}
	if defaultPath == "" {
		defaultPath = ".env"
	}
	if description == "" {
		description = "Path to the .env file"
	}

	return &EnvLoader{
		value:       fs.String("env", defaultPath, description),
		defaultPath: defaultPath,
	}
}

// Candidates lists the files Load tries, in order, without duplicates.
func (l *EnvLoader) Candidates() []string {
	if l == nil {
		return nil
	}

	raw := []string{strings.TrimSpace(os.Getenv(EnvFileOverrideVar))}
	requested := ""
	if l.value != nil {
		requested = strings.TrimSpace(*l.value)
	}
	if requested == "" {
		requested = l.defaultPath
	}
	raw = append(raw, requested, filepath.Base(requested), l.defaultPath)

	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, candidate := range raw {
		if candidate == "" || candidate == "." {
			continue
		}
		if _, exists := seen[candidate]; exists {
			continue
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}
	return out
}

// Load overlays the first readable candidate onto the process environment
// and returns its path. Values from the file override existing variables.
func (l *EnvLoader) Load() (string, error) {
	if l == nil {
		return "", fmt.Errorf("env loader is nil")
	}

	candidates := l.Candidates()
	for _, candidate := range candidates {
		if err := godotenv.Overload(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w (tried %s)", ErrNoEnvFile, strings.Join(candidates, ", "))
}
