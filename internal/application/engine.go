package application

import (
	"context"
	"fmt"

	"github.com/es-stream-helper/docgate/internal/config"
	"github.com/es-stream-helper/docgate/internal/database"
	"github.com/es-stream-helper/docgate/internal/engine"
	"github.com/es-stream-helper/docgate/pkg/logger"
)

const mongoConnectAttempts = 5

// NewEngine builds the backend selected by ENGINE_BACKEND. The returned close
// func releases backend connections and is never nil.
func NewEngine(ctx context.Context, cfg *config.Config) (engine.Engine, func(), error) {
	noop := func() {}
	mode, err := engine.ParseTypeMode(cfg.Engine.TypeMode)
	if err != nil {
		return nil, noop, err
	}
	cc := engine.ClientConfig{
		Addresses:     cfg.Engine.Addresses,
		Username:      cfg.Engine.Username,
		Password:      cfg.Engine.Password,
		SkipTLSVerify: cfg.Engine.SkipTLSVerify,
		TypeMode:      mode,
		Refresh:       cfg.Engine.Refresh,
	}

	switch cfg.Engine.Backend {
	case config.BackendElasticsearch, "":
		e, err := engine.NewElastic(cc)
		if err != nil {
			return nil, noop, err
		}
		logger.Infof("engine: elasticsearch %v (type mode %s)", cc.Addresses, mode)
		return e, noop, nil
	case config.BackendOpenSearch:
		e, err := engine.NewOpenSearch(cc)
		if err != nil {
			return nil, noop, err
		}
		logger.Infof("engine: opensearch %v", cc.Addresses)
		return e, noop, nil
	case config.BackendMongo:
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, mongoConnectAttempts)
		if err != nil {
			return nil, noop, err
		}
		logger.Infof("engine: mongodb database %s", cfg.MongoDB.Database)
		return engine.NewMongo(client.Database(cfg.MongoDB.Database)), func() {
			_ = client.Disconnect(context.Background())
		}, nil
	case config.BackendMemory:
		logger.Warnf("engine: in-memory backend, documents are lost on restart")
		return engine.NewMemory(), noop, nil
	}
	return nil, noop, fmt.Errorf("%w: %q", engine.ErrUnknownBackend, cfg.Engine.Backend)
}
