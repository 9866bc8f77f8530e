package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding flag defaults,
// e.g. WEIGHT_THREADS or WEIGHT_MIN_SIZE.
const EnvPrefix = "WEIGHT"

// configCandidates lists the config files looked for when --config is not given.
func configCandidates() []string {
	var candidates []string

	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "weight", "config.yaml"))
	}

	return append(candidates, ".weight.yaml")
}

// loadConfig wires environment variables into v and reads the config file.
// An explicitly named file must exist; the default locations are optional.
func loadConfig(v *viper.Viper, explicit string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	path := explicit

	if path == "" {
		for _, candidate := range configCandidates() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate

				break
			}
		}
	}

	if path == "" {
		return nil
	}

	v.SetConfigFile(path)

	if filepath.Ext(path) == "" {
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	return nil
}
