package confloader

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "RESPKV_"

// Loader loads configuration from multiple sources.
type Loader struct {
	k          *koanf.Koanf
	envPrefix  string
	filePath   string
	dotEnvPath string
	loaded     bool
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithDotEnv sets the .env file path. A missing file is not an error.
func WithDotEnv(path string) Option {
	return func(l *Loader) {
		l.dotEnvPath = path
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// FilePath returns the configured YAML file path.
func (l *Loader) FilePath() string {
	return l.filePath
}

// Load loads configuration from all sources and unmarshals into target,
// which must be a pointer to a struct holding the defaults.
func (l *Loader) Load(target any) error {
	keys := envKeys(l.envPrefix, target)

	if l.dotEnvPath != "" {
		if err := l.LoadDotEnv(l.dotEnvPath, keys); err != nil {
			return fmt.Errorf("load dotenv: %w", err)
		}
	}

	if l.filePath != "" {
		if err := l.LoadFile(l.filePath); err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
	}

	if err := l.LoadEnv(keys); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	l.loaded = true
	return nil
}

// Reload discards previously loaded values and runs Load again.
func (l *Loader) Reload(target any) error {
	l.k = koanf.New(".")
	l.loaded = false
	return l.Load(target)
}

// LoadFile loads configuration from a YAML file.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	provider := file.Provider(path)
	if err := l.k.Load(provider, yaml.Parser()); err != nil {
		return fmt.Errorf("load file %s: %w", path, err)
	}

	return nil
}

// envKey is the koanf path an environment variable maps to.
type envKey struct {
	path string
	// list fields take comma separated values
	list bool
}

func (k envKey) value(raw string) any {
	if !k.list {
		return raw
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadDotEnv loads a .env file. Only names present in keys are used; the
// process environment is left untouched.
func (l *Loader) LoadDotEnv(path string, keys map[string]envKey) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	data := make(map[string]any, len(vars))
	for name, value := range vars {
		if key, ok := keys[name]; ok {
			data[key.path] = key.value(value)
		}
	}
	return l.LoadMap(data)
}

// LoadEnv loads configuration from environment variables named in keys.
// Other variables with the prefix are ignored.
func (l *Loader) LoadEnv(keys map[string]envKey) error {
	provider := env.ProviderWithValue(l.envPrefix, ".", func(name, value string) (string, any) {
		key, ok := keys[name]
		if !ok {
			return "", nil
		}
		return key.path, key.value(value)
	})
	if err := l.k.Load(provider, nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	return nil
}

// LoadMap loads configuration from a map with dotted keys.
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	return nil
}

// Unmarshal unmarshals the loaded configuration into the target struct.
// Uses koanf tags for struct field mapping.
func (l *Loader) Unmarshal(target any) error {
	return l.k.Unmarshal("", target)
}

// IsLoaded returns true if configuration has been loaded.
func (l *Loader) IsLoaded() bool {
	return l.loaded
}

// String returns the string value at a koanf path.
func (l *Loader) String(key string) string {
	return l.k.String(key)
}

// envKeys maps environment variable names to koanf paths for every leaf
// field of target's struct type.
func envKeys(prefix string, target any) map[string]envKey {
	keys := make(map[string]envKey)
	t := reflect.TypeOf(target)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return keys
	}
	collectKeys(t, "", prefix, keys)
	return keys
}

func collectKeys(t reflect.Type, parent, prefix string, out map[string]envKey) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.SplitN(f.Tag.Get("koanf"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}

		path := name
		if parent != "" {
			path = parent + "." + name
		}

		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct {
			collectKeys(ft, path, prefix, out)
			continue
		}
		out[prefix+strings.ToUpper(strings.ReplaceAll(path, ".", "_"))] = envKey{
			path: path,
			list: ft.Kind() == reflect.Slice && ft.Elem().Kind() == reflect.String,
		}
	}
}
