package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/imasuvo/prompt-studio/pkg/adapter"
	"github.com/imasuvo/prompt-studio/pkg/gateway"
	"github.com/imasuvo/prompt-studio/pkg/repository"
	"github.com/imasuvo/prompt-studio/pkg/usecase/generate"
	"github.com/imasuvo/prompt-studio/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// config holds per-command configuration. Flags override the optional
// YAML config file, which overrides built-in defaults.
type config struct {
	geminiAPIKey string
	textModel    string
	imageModel   string
	historyPath  string
	logLevel     string
	configPath   string

	file fileConfig
}

type fileConfig struct {
	TextModel   string `yaml:"text_model"`
	ImageModel  string `yaml:"image_model"`
	HistoryPath string `yaml:"history_path"`
}

// globalFlags returns the common flags with destination config.
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key",
			Sources:     cli.EnvVars("GEMINI_API_KEY"),
			Destination: &cfg.geminiAPIKey,
		},
		&cli.StringFlag{
			Name:        "text-model",
			Usage:       "Model for prompt enrichment and keyframe decomposition",
			Sources:     cli.EnvVars("PROMPT_STUDIO_TEXT_MODEL"),
			Destination: &cfg.textModel,
		},
		&cli.StringFlag{
			Name:        "image-model",
			Usage:       "Model for image synthesis",
			Sources:     cli.EnvVars("PROMPT_STUDIO_IMAGE_MODEL"),
			Destination: &cfg.imageModel,
		},
		&cli.StringFlag{
			Name:        "history",
			Usage:       "Path to the history snapshot file",
			Sources:     cli.EnvVars("PROMPT_STUDIO_HISTORY"),
			Destination: &cfg.historyPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("PROMPT_STUDIO_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML config file",
			Sources:     cli.EnvVars("PROMPT_STUDIO_CONFIG"),
			Destination: &cfg.configPath,
		},
	}
}

// apply sets up the command logger and loads the config file. Returns a
// context carrying the logger.
func (cfg *config) apply(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	ctx = logging.With(ctx, logger)

	cfg.file = loadFileConfig(ctx, cfg.configPath)
	return ctx
}

func loadFileConfig(ctx context.Context, path string) fileConfig {
	var fc fileConfig

	explicit := path != ""
	if !explicit {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fc
		}
		path = filepath.Join(dir, "prompt-studio", "config.yml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			logging.From(ctx).Warn("failed to read config file", "path", path, "error", err)
		}
		return fc
	}

	if err := yaml.Unmarshal(data, &fc); err != nil {
		logging.From(ctx).Warn("failed to parse config file", "path", path, "error", err)
		return fileConfig{}
	}

	return fc
}

func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (cfg *config) resolvedHistoryPath() (string, error) {
	if path := pick(cfg.historyPath, cfg.file.HistoryPath); path != "" {
		return path, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", goerr.Wrap(err, "failed to locate user config directory")
	}
	return filepath.Join(dir, "prompt-studio", "history.json"), nil
}

// newRepository opens the history store.
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	path, err := cfg.resolvedHistoryPath()
	if err != nil {
		return nil, err
	}
	return repository.NewLocal(ctx, path)
}

// newGateway creates the model gateway.
func (cfg *config) newGateway(ctx context.Context) (gateway.Gateway, error) {
	var opts []adapter.GeminiOption
	if m := pick(cfg.textModel, cfg.file.TextModel); m != "" {
		opts = append(opts, adapter.WithTextModel(m))
	}
	if m := pick(cfg.imageModel, cfg.file.ImageModel); m != "" {
		opts = append(opts, adapter.WithImageModel(m))
	}

	gemini, err := adapter.NewGemini(ctx, cfg.geminiAPIKey, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini adapter")
	}

	return gateway.New(gemini), nil
}

// newUseCase wires the full pipeline with spinner progress.
func (cfg *config) newUseCase(ctx context.Context, prog *progress) (*generate.UseCase, repository.Repository, error) {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, nil, err
	}

	gw, err := cfg.newGateway(ctx)
	if err != nil {
		return nil, nil, err
	}

	var opts []generate.Option
	if prog != nil {
		opts = append(opts, generate.WithProgress(prog.Update))
	}

	return generate.New(gw, repo, opts...), repo, nil
}
