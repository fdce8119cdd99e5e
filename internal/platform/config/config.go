package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperrors "onehour/internal/platform/errors"
)

const (
	LocalDirName  = ".project"
	GlobalDirName = "project"
	EnvHome       = "PROJECT_TRACKER_HOME"
	FileName      = "project.yaml"
	DotEnvFile    = ".env"

	DefaultTimeframe = "day"
	DefaultThreshold = time.Hour
	DefaultLogLevel  = "warn"

	defaultDataFile  = "data/data.csv"
	defaultCacheFile = "cache/cache.json"
	defaultIndexFile = "cache/index.db"
)

// Location selects where setup creates a tracker home.
type Location string

const (
	LocationLocal  Location = "local"
	LocationGlobal Location = "global"
	LocationEnv    Location = "env"
)

func ParseLocation(raw string) (Location, error) {
	switch loc := Location(strings.ToLower(strings.TrimSpace(raw))); loc {
	case LocationLocal, LocationGlobal, LocationEnv:
		return loc, nil
	case "":
		return LocationGlobal, nil
	default:
		return "", fmt.Errorf("%w: unknown location %q", apperrors.ErrInvalidInput, raw)
	}
}

type Config struct {
	Home              string
	Timeframe         string
	FinishedThreshold time.Duration
	DataPath          string
	CachePath         string
	IndexPath         string
	LogLevel          string
}

// fileConfig is the on-disk shape of project.yaml.
type fileConfig struct {
	Timeframe         string `yaml:"timeframe"`
	FinishedThreshold string `yaml:"finished_threshold"`
	DataFile          string `yaml:"data_file"`
	CacheFile         string `yaml:"cache_file"`
	IndexFile         string `yaml:"index_file"`
	LogLevel          string `yaml:"log_level"`
}

func defaultFile() fileConfig {
	return fileConfig{
		Timeframe:         DefaultTimeframe,
		FinishedThreshold: DefaultThreshold.String(),
		DataFile:          defaultDataFile,
		CacheFile:         defaultCacheFile,
		IndexFile:         defaultIndexFile,
		LogLevel:          DefaultLogLevel,
	}
}

// Env is the slice of process state that home discovery depends on.
type Env struct {
	Cwd       string
	ConfigDir string
	Lookup    func(key string) (string, bool)
}

// SystemEnv reads the working directory, ~/.config and the environment.
// Values from a .env file in the working directory fill in variables the
// environment does not set.
func SystemEnv() (Env, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Env{}, fmt.Errorf("resolve working dir: %w", err)
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return Env{}, fmt.Errorf("resolve user home: %w", err)
	}
	dotenv, err := readDotEnv(filepath.Join(cwd, DotEnvFile))
	if err != nil {
		return Env{}, err
	}
	return Env{
		Cwd:       cwd,
		ConfigDir: filepath.Join(userHome, ".config"),
		Lookup: func(key string) (string, bool) {
			if v, ok := os.LookupEnv(key); ok {
				return v, true
			}
			v, ok := dotenv[key]
			return v, ok
		},
	}, nil
}

func readDotEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return values, nil
}

func (e Env) lookup(key string) string {
	if e.Lookup == nil {
		return ""
	}
	v, _ := e.Lookup(key)
	return strings.TrimSpace(v)
}

func (e Env) globalHome() string {
	return filepath.Join(e.ConfigDir, GlobalDirName)
}

// Discover finds the tracker home. Order: explicit flag, the nearest
// .project directory walking up from the working directory, the
// PROJECT_TRACKER_HOME variable, then ~/.config/project.
func Discover(flagHome string, env Env) (string, error) {
	if flagHome != "" {
		return filepath.Abs(flagHome)
	}
	if env.Cwd != "" {
		dir := filepath.Clean(env.Cwd)
		for {
			candidate := filepath.Join(dir, LocalDirName)
			if isDir(candidate) {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	if override := env.lookup(EnvHome); override != "" && isDir(override) {
		return filepath.Abs(override)
	}
	if env.ConfigDir != "" && isDir(env.globalHome()) {
		return env.globalHome(), nil
	}
	return "", fmt.Errorf("%w: no tracker home, run `onehour setup`", apperrors.ErrNotFound)
}

// Load reads project.yaml from home. Missing keys take their defaults and
// relative file paths resolve against home.
func Load(home string) (Config, error) {
	payload, err := os.ReadFile(filepath.Join(home, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s in %s", apperrors.ErrNotFound, FileName, home)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	file := defaultFile()
	if err := yaml.Unmarshal(payload, &file); err != nil {
		return Config{}, fmt.Errorf("%w: decode %s: %v", apperrors.ErrInvalidInput, FileName, err)
	}
	return fromFile(home, file)
}

func fromFile(home string, file fileConfig) (Config, error) {
	defaults := defaultFile()
	threshold := DefaultThreshold
	if file.FinishedThreshold != "" {
		parsed, err := time.ParseDuration(file.FinishedThreshold)
		if err != nil || parsed <= 0 {
			return Config{}, fmt.Errorf("%w: finished_threshold %q", apperrors.ErrInvalidInput, file.FinishedThreshold)
		}
		threshold = parsed
	}
	return Config{
		Home:              home,
		Timeframe:         orDefault(file.Timeframe, defaults.Timeframe),
		FinishedThreshold: threshold,
		DataPath:          resolve(home, orDefault(file.DataFile, defaults.DataFile)),
		CachePath:         resolve(home, orDefault(file.CacheFile, defaults.CacheFile)),
		IndexPath:         resolve(home, orDefault(file.IndexFile, defaults.IndexFile)),
		LogLevel:          orDefault(file.LogLevel, defaults.LogLevel),
	}, nil
}

// Setup creates a tracker home at loc and writes a default project.yaml
// unless one exists. envPath is only consulted for LocationEnv and falls
// back to PROJECT_TRACKER_HOME.
func Setup(loc Location, env Env, envPath string) (string, error) {
	var home string
	switch loc {
	case LocationLocal:
		home = filepath.Join(env.Cwd, LocalDirName)
	case LocationGlobal:
		home = env.globalHome()
	case LocationEnv:
		home = envPath
		if home == "" {
			home = env.lookup(EnvHome)
		}
		if home == "" {
			return "", fmt.Errorf("%w: %s is not set", apperrors.ErrInvalidInput, EnvHome)
		}
	default:
		return "", fmt.Errorf("%w: unknown location %q", apperrors.ErrInvalidInput, loc)
	}
	home, err := filepath.Abs(home)
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}

	cfg, err := fromFile(home, defaultFile())
	if err != nil {
		return "", err
	}
	for _, dir := range []string{home, filepath.Dir(cfg.DataPath), filepath.Dir(cfg.CachePath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", dir, err)
		}
	}

	path := filepath.Join(home, FileName)
	if _, err := os.Stat(path); err == nil {
		return home, nil
	}
	payload, err := yaml.Marshal(defaultFile())
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return home, nil
}

func resolve(home, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(home, path)
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
