package app

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/FlosMume/CareMind/internal/config"
	"github.com/FlosMume/CareMind/internal/export"
	"github.com/FlosMume/CareMind/internal/infrastructure/drugbank"
	"github.com/FlosMume/CareMind/internal/infrastructure/nmpa"
	"github.com/FlosMume/CareMind/internal/infrastructure/offline"
	"github.com/FlosMume/CareMind/internal/infrastructure/storage"
	"github.com/FlosMume/CareMind/internal/logging"
	"github.com/FlosMume/CareMind/internal/ports"
	"github.com/FlosMume/CareMind/internal/source"
	"github.com/FlosMume/CareMind/internal/usecase"
)

// Application wires configuration to the resolver and exporter.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	resolver *usecase.Resolver
	exporter *export.XLSXExporter
	cache    *storage.SQLiteRepository
}

// New assembles the fallback chain from configuration. Source availability
// (credential present, directory configured) is decided here, once per
// run, never per record.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	retryCfg := cfg.Resolver.Retry.Executor()

	var sources []source.Source

	if !cfg.Sources.NMPA.Disabled {
		sources = append(sources, nmpa.NewClient(nmpa.Options{
			BaseURL:     cfg.Sources.NMPA.BaseURL,
			Timeout:     cfg.Sources.NMPA.Timeout(),
			MinInterval: cfg.Sources.NMPA.MinRequestInterval(),
			Retry:       retryCfg,
		}, baseLogger.With("component", "source.nmpa")))
	}

	if !cfg.Sources.DrugBank.Disabled {
		client := drugbank.NewClient(drugbank.Options{
			APIKey:      cfg.Sources.DrugBank.APIKey,
			BaseURL:     cfg.Sources.DrugBank.BaseURL,
			Timeout:     cfg.Sources.DrugBank.Timeout(),
			MinInterval: cfg.Sources.DrugBank.MinRequestInterval(),
			Retry:       retryCfg,
		}, baseLogger.With("component", "source.drugbank"))
		if client.Available() {
			sources = append(sources, client)
		} else {
			baseLogger.Info("drugbank source disabled: no api key configured")
		}
	}

	if cfg.Sources.Offline.Dir != "" {
		sources = append(sources, offline.NewScanner(cfg.Sources.Offline.Dir,
			baseLogger.With("component", "source.offline")))
	}

	var cache *storage.SQLiteRepository
	if cfg.Cache.Path != "" {
		var err error
		cache, err = storage.Open(cfg.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("open record cache: %w", err)
		}
	}

	resolver := usecase.NewResolver(usecase.ResolverDeps{
		Sources:     sources,
		Repository:  repositoryOrNil(cache),
		Concurrency: cfg.Resolver.Concurrency,
		Logger:      baseLogger.With("component", "resolver"),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		resolver: resolver,
		exporter: export.NewXLSXExporter(baseLogger.With("component", "exporter")),
		cache:    cache,
	}, nil
}

// Run resolves every name in the input list and writes the workbook.
func (a *Application) Run(ctx context.Context, inPath, outPath string) error {
	names, err := LoadNames(inPath)
	if err != nil {
		return fmt.Errorf("load drug list: %w", err)
	}

	records, err := a.resolver.ResolveAll(ctx, names)
	if err != nil {
		return fmt.Errorf("resolve records: %w", err)
	}

	if err := a.exporter.ExportToFile(records, outPath); err != nil {
		return fmt.Errorf("export records: %w", err)
	}

	a.logger.Info("run complete", "drugs", len(records), "out", outPath)
	return nil
}

// Close releases the record cache, if one was opened.
func (a *Application) Close() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}

// LoadNames reads the newline-delimited drug list, trimming whitespace
// and dropping blank lines.
func LoadNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			names = append(names, name)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// repositoryOrNil keeps a typed nil pointer out of the resolver's
// interface field.
func repositoryOrNil(cache *storage.SQLiteRepository) ports.RecordRepository {
	if cache == nil {
		return nil
	}
	return cache
}
