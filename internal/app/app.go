package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"alfredoptarigan/skill-analyzer/internal/config"
	"alfredoptarigan/skill-analyzer/internal/logger"
	"alfredoptarigan/skill-analyzer/internal/repositories"
	"alfredoptarigan/skill-analyzer/internal/services"
	"alfredoptarigan/skill-analyzer/internal/skills"
)

// Components is the wired pipeline shared by the API server and the CLI.
type Components struct {
	Lexicon     *skills.Lexicon
	Extractions repositories.ExtractionRepository
	Analyses    repositories.AnalysisRepository
	Extraction  services.ExtractionService
	Index       services.SkillIndex
	Guard       services.InflightGuard

	cfg     *config.Config
	log     *zap.Logger
	closers []func()
}

// Build wires stores and the extraction pipeline. Optional backends
// (Redis, Qdrant) that cannot be reached are logged and skipped.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Components, error) {
	log = logger.OrNop(log)
	c := &Components{cfg: cfg, log: log}

	lexicon, err := skills.Load(cfg.Lexicon.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon: %w", err)
	}
	c.Lexicon = lexicon
	log.Info("lexicon loaded", zap.Int("terms", lexicon.Len()), zap.Strings("categories", lexicon.Categories()))

	if err := c.openStores(cfg, log); err != nil {
		return nil, err
	}

	c.Guard = c.openGuard(ctx, cfg, log)
	c.Index = c.openIndex(ctx, cfg, lexicon, log)

	var opts []services.ExtractionOption
	if c.Index != nil {
		opts = append(opts, services.WithIndex(c.Index))
	}
	if cfg.Storage.ArchiveUploads {
		archive := services.NewDocumentArchive(cfg.Storage.UploadPath)
		if err := archive.EnsureUploadDir(); err != nil {
			c.Close()
			return nil, err
		}
		opts = append(opts, services.WithArchive(archive))
		log.Info("upload archive enabled", zap.String("path", cfg.Storage.UploadPath))
	}

	c.Extraction = services.NewExtractionService(skills.NewExtractor(lexicon), c.Extractions, log, opts...)
	return c, nil
}

// Analyzer builds the analysis pipeline. It needs GEMINI_API_KEY.
func (c *Components) Analyzer() (services.Analyzer, error) {
	if err := c.cfg.RequireGemini(); err != nil {
		return nil, err
	}

	client, err := services.NewGeminiClient(services.GeminiConfig{
		APIKey:      c.cfg.Gemini.APIKey,
		Model:       c.cfg.Gemini.Model,
		BaseURL:     c.cfg.Gemini.BaseURL,
		Timeout:     c.cfg.Gemini.Timeout,
		Temperature: c.cfg.Gemini.Temperature,
	}, c.log)
	if err != nil {
		return nil, err
	}

	return services.NewAnalyzer(c.Extractions, c.Analyses, client, c.Guard, c.log), nil
}

func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func (c *Components) closeIndex(index services.SkillIndex) func() {
	return func() {
		if err := index.Close(); err != nil {
			c.log.Warn("failed to close qdrant client", zap.Error(err))
		}
	}
}

func (c *Components) openStores(cfg *config.Config, log *zap.Logger) error {
	switch cfg.Database.Backend {
	case config.BackendMemory:
		c.Extractions = repositories.NewMemoryExtractionRepository()
		c.Analyses = repositories.NewMemoryAnalysisRepository()
		log.Warn("using in-memory stores; data is lost on exit")
		return nil
	case config.BackendPostgres:
		db, err := config.InitDatabase(cfg, log)
		if err != nil {
			return err
		}
		c.closers = append(c.closers, func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		})
		c.Extractions = repositories.NewExtractionRepository(db)
		c.Analyses = repositories.NewAnalysisRepository(db)
		return nil
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", cfg.Database.Backend)
	}
}

func (c *Components) openGuard(ctx context.Context, cfg *config.Config, log *zap.Logger) services.InflightGuard {
	if cfg.Redis.Addr == "" {
		return services.NewMemoryGuard()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unavailable, using in-process inflight guard", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = client.Close()
		return services.NewMemoryGuard()
	}

	c.closers = append(c.closers, func() { _ = client.Close() })
	log.Info("redis inflight guard enabled", zap.String("addr", cfg.Redis.Addr))
	return services.NewRedisGuard(client, cfg.Redis.InflightTTL, log)
}

func (c *Components) openIndex(ctx context.Context, cfg *config.Config, lexicon *skills.Lexicon, log *zap.Logger) services.SkillIndex {
	if cfg.Qdrant.URL == "" {
		return nil
	}

	index, err := services.NewQdrantIndex(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, lexicon, log)
	if err != nil {
		log.Warn("qdrant disabled", zap.Error(err))
		return nil
	}

	initCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := index.EnsureCollection(initCtx); err != nil {
		log.Warn("qdrant disabled", zap.Error(err))
		_ = index.Close()
		return nil
	}

	c.closers = append(c.closers, c.closeIndex(index))
	return index
}
