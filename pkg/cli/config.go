package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/visaire/pkg/adapter"
	"github.com/m-mizutani/visaire/pkg/repository"
	"github.com/m-mizutani/visaire/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"
)

const (
	storageFile      = "file"
	storageSQLite    = "sqlite"
	storageMemory    = "memory"
	storageGCS       = "gcs"
	storageFirestore = "firestore"
)

// defaultExamples are offered when the config file has none
var defaultExamples = []string{
	"A circle that transforms into a square",
	"A bouncing ball with a shadow",
	"The Pythagorean theorem proven visually",
	"A sine wave drawn along a rotating unit circle",
}

// config holds configuration values
type config struct {
	logLevel   string
	configPath string
	dataDir    string

	// Generation service
	baseURL string
	timeout time.Duration

	// History storage
	storage     string
	bucket      string
	prefix      string
	project     string
	database    string
	collection  string
	credentials string

	examples []string
}

// fileConfig is the optional YAML config file
type fileConfig struct {
	BaseURL  string   `yaml:"base_url"`
	Examples []string `yaml:"examples"`
	Storage  struct {
		Backend    string `yaml:"backend"`
		Bucket     string `yaml:"bucket"`
		Prefix     string `yaml:"prefix"`
		Project    string `yaml:"project"`
		Database   string `yaml:"database"`
		Collection string `yaml:"collection"`
	} `yaml:"storage"`
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".visaire"
	}
	return filepath.Join(home, ".visaire")
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "warn",
			Sources:     cli.EnvVars("VISAIRE_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML config file (default: <data-dir>/config.yaml)",
			Sources:     cli.EnvVars("VISAIRE_CONFIG"),
			Destination: &cfg.configPath,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Directory for local history and settings",
			Value:       defaultDataDir(),
			Sources:     cli.EnvVars("VISAIRE_DATA_DIR"),
			Destination: &cfg.dataDir,
		},
	}
}

// serviceFlags returns flags for the generation service
func serviceFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "base-url",
			Aliases:     []string{"u"},
			Usage:       "Base URL of the animation generation service",
			Value:       "http://localhost:8000",
			Sources:     cli.EnvVars("VISAIRE_BASE_URL"),
			Destination: &cfg.baseURL,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "HTTP client timeout, 0 for none",
			Sources:     cli.EnvVars("VISAIRE_TIMEOUT"),
			Destination: &cfg.timeout,
		},
	}
}

// storageFlags returns flags for the history storage backend
func storageFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage",
			Aliases:     []string{"s"},
			Usage:       "History storage backend (file, sqlite, memory, gcs, firestore)",
			Value:       storageFile,
			Sources:     cli.EnvVars("VISAIRE_STORAGE"),
			Destination: &cfg.storage,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket for the gcs backend",
			Sources:     cli.EnvVars("VISAIRE_BUCKET"),
			Destination: &cfg.bucket,
		},
		&cli.StringFlag{
			Name:        "prefix",
			Usage:       "Object name prefix for the gcs backend",
			Value:       "visaire/",
			Sources:     cli.EnvVars("VISAIRE_PREFIX"),
			Destination: &cfg.prefix,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID for the firestore backend",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "collection",
			Usage:       "Firestore collection for the firestore backend",
			Value:       "visaire",
			Sources:     cli.EnvVars("VISAIRE_COLLECTION"),
			Destination: &cfg.collection,
		},
		&cli.StringFlag{
			Name:        "credentials",
			Usage:       "Path to a Google Cloud credentials file",
			Sources:     cli.EnvVars("GOOGLE_APPLICATION_CREDENTIALS"),
			Destination: &cfg.credentials,
		},
	}
}

// allFlags returns every flag a session command needs
func allFlags(cfg *config) []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, globalFlags(cfg)...)
	flags = append(flags, serviceFlags(cfg)...)
	flags = append(flags, storageFlags(cfg)...)
	return flags
}

// setup applies the config file and attaches a logger to ctx. Values from
// the config file are used only for flags not set on the command line or by
// environment.
func (cfg *config) setup(ctx context.Context, c *cli.Command) (context.Context, error) {
	logger := logging.New(cfg.logLevel, c.Root().ErrWriter)
	logging.SetDefault(logger)
	ctx = logging.With(ctx, logger)

	path := cfg.configPath
	if path == "" {
		path = filepath.Join(cfg.dataDir, "config.yaml")
	}
	file, err := loadFileConfig(path, cfg.configPath != "")
	if err != nil {
		return ctx, err
	}
	cfg.merge(file, c.IsSet)

	logger.Debug("configuration loaded",
		"config", path,
		"base_url", cfg.baseURL,
		"storage", cfg.storage,
	)
	return ctx, nil
}

// loadFileConfig reads the YAML config at path. A missing file is not an
// error unless required is true.
func loadFileConfig(path string, required bool) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return &fileConfig{}, nil
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", path))
	}
	return &file, nil
}

func (cfg *config) merge(file *fileConfig, isSet func(name string) bool) {
	pick := func(dst *string, name, value string) {
		if value != "" && !isSet(name) {
			*dst = value
		}
	}

	pick(&cfg.baseURL, "base-url", file.BaseURL)
	pick(&cfg.storage, "storage", file.Storage.Backend)
	pick(&cfg.bucket, "bucket", file.Storage.Bucket)
	pick(&cfg.prefix, "prefix", file.Storage.Prefix)
	pick(&cfg.project, "project", file.Storage.Project)
	pick(&cfg.database, "database", file.Storage.Database)
	pick(&cfg.collection, "collection", file.Storage.Collection)

	cfg.examples = nil
	for _, example := range file.Examples {
		if s := strings.TrimSpace(example); s != "" {
			cfg.examples = append(cfg.examples, s)
		}
	}
	if len(cfg.examples) == 0 {
		cfg.examples = defaultExamples
	}
}

// newService creates a client of the generation service
func (cfg *config) newService() (*adapter.VisaireClient, error) {
	client, err := adapter.NewVisaire(cfg.baseURL, adapter.WithTimeout(cfg.timeout))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create service client")
	}
	return client, nil
}

func (cfg *config) clientOptions() []option.ClientOption {
	if cfg.credentials == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.credentials)}
}

// newKV creates the history storage backend. The returned function releases
// its resources.
func (cfg *config) newKV(ctx context.Context) (repository.KV, func(), error) {
	nop := func() {}

	switch strings.ToLower(cfg.storage) {
	case storageFile, "":
		kv, err := repository.NewFile(cfg.dataDir)
		if err != nil {
			return nil, nop, err
		}
		return kv, nop, nil

	case storageSQLite:
		kv, err := repository.NewSQLite(filepath.Join(cfg.dataDir, "visaire.db"))
		if err != nil {
			return nil, nop, err
		}
		return kv, closer(ctx, kv.Close), nil

	case storageMemory:
		return repository.NewMemory(), nop, nil

	case storageGCS:
		kv, err := repository.NewCloudStorage(ctx, cfg.bucket, cfg.prefix, cfg.clientOptions()...)
		if err != nil {
			return nil, nop, err
		}
		return kv, closer(ctx, kv.Close), nil

	case storageFirestore:
		kv, err := repository.NewFirestore(ctx, cfg.project, cfg.database, cfg.collection, cfg.clientOptions()...)
		if err != nil {
			return nil, nop, err
		}
		return kv, closer(ctx, kv.Close), nil

	default:
		return nil, nop, goerr.New("unknown storage backend", goerr.V("storage", cfg.storage))
	}
}

func closer(ctx context.Context, fn func() error) func() {
	return func() {
		if err := fn(); err != nil {
			logging.From(ctx).Warn("failed to close storage", logging.ErrAttr(err))
		}
	}
}
