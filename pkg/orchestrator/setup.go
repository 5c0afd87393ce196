package orchestrator

import (
	"context"
	"os"
	"time"

	"github.com/medassist/medassist/pkg/agent/disease"
	"github.com/medassist/medassist/pkg/agent/records"
	"github.com/medassist/medassist/pkg/agent/scheduling"
	"github.com/medassist/medassist/pkg/completion"
	"github.com/medassist/medassist/pkg/completion/mock"
	"github.com/medassist/medassist/pkg/completion/openai"
	"github.com/medassist/medassist/pkg/completion/ratelimit"
	"github.com/medassist/medassist/pkg/config"
	"github.com/medassist/medassist/pkg/ehr"
	"github.com/medassist/medassist/pkg/errors"
	"github.com/medassist/medassist/pkg/log"
	"github.com/medassist/medassist/pkg/memory"
	"github.com/medassist/medassist/pkg/rag"
	"github.com/medassist/medassist/pkg/search"
)

// System is the fully wired assistant: the orchestrator plus the
// collaborators a front end needs direct access to.
type System struct {
	Orchestrator *Orchestrator
	Memory       *memory.Manager
	Store        *ehr.SQLStore
	Search       *search.Aggregator
	RAG          *rag.Engine
	Client       completion.Client
}

// NewSystemFromConfig builds the whole system from configuration:
// completion client with the shared rate limiter, record store, vector
// memory, search aggregator, RAG engine, the three agents, and the
// orchestrator on top.
func NewSystemFromConfig(ctx context.Context, cfg *config.Config) (*System, error) {
	client, err := initCompletionClient(cfg)
	if err != nil {
		return nil, err
	}

	store, err := initStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	mem, err := memory.NewManager(memory.Config{
		Path:         cfg.Memory.Path,
		Collection:   cfg.Memory.Collection,
		ChunkSize:    cfg.Memory.ChunkSize,
		ChunkOverlap: cfg.Memory.ChunkOverlap,
	}, client)
	if err != nil {
		store.Close()
		return nil, err
	}

	aggregator := search.NewAggregator(search.Config{
		WebAPIKey:          cfg.Search.Web.APIKey,
		WebEndpoint:        cfg.Search.Web.Endpoint,
		LiteratureAPIKey:   cfg.Search.Literature.APIKey,
		LiteratureEmail:    cfg.Search.Literature.Email,
		LiteratureEndpoint: cfg.Search.Literature.Endpoint,
		MaxPerSource:       cfg.Search.MaxPerSource,
	})

	engine := rag.NewEngine(mem, aggregator, client)

	orch := New(
		client,
		disease.New(client, engine),
		records.New(store, client, mem, engine),
		scheduling.New(client),
	)

	return &System{
		Orchestrator: orch,
		Memory:       mem,
		Store:        store,
		Search:       aggregator,
		RAG:          engine,
		Client:       client,
	}, nil
}

// Close releases the system's resources.
func (s *System) Close() error {
	return s.Store.Close()
}

func initCompletionClient(cfg *config.Config) (completion.Client, error) {
	interval := time.Duration(cfg.Completion.MinRequestInterval * float64(time.Second))
	limiter := ratelimit.New(interval)

	switch cfg.Completion.Provider {
	case "openai", "":
		apiKey := cfg.Completion.OpenAI.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			log.Warn("OpenAI API key not found, falling back to mock completion client")
			return mock.NewClient(), nil
		}

		client, err := openai.NewClient(openai.Config{
			APIKey:         apiKey,
			ChatModel:      cfg.Completion.OpenAI.Model,
			EmbeddingModel: cfg.Completion.OpenAI.EmbeddingModel,
		}, limiter)
		if err != nil {
			return nil, errors.Wrap(err, "failed to initialize completion client")
		}
		log.Info("Using OpenAI completion client",
			"chat_model", cfg.Completion.OpenAI.Model,
			"embedding_model", cfg.Completion.OpenAI.EmbeddingModel,
			"min_request_interval", interval.String())
		return client, nil

	case "mock":
		log.Info("Using mock completion client")
		return mock.NewClient(), nil

	default:
		log.Warn("Unsupported completion provider, using mock client",
			"provider", cfg.Completion.Provider)
		return mock.NewClient(), nil
	}
}

func initStore(ctx context.Context, cfg *config.Config) (*ehr.SQLStore, error) {
	driver := cfg.EHR.Driver
	if driver == "sqlite" || driver == "" {
		driver = "sqlite3"
	}

	store, err := ehr.NewSQLStore(driver, cfg.EHR.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.EHR.Seed {
		if err := store.Seed(ctx); err != nil {
			store.Close()
			return nil, err
		}
	}
	return store, nil
}
