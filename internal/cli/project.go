package cli

import (
	"fmt"

	"github.com/saeedalam/stubgen/internal/config"
	"github.com/saeedalam/stubgen/internal/storage"
	"github.com/saeedalam/stubgen/internal/worker"
)

// project bundles the stores and worker of an initialised .stubgen directory
type project struct {
	store   *storage.JSONStore
	index   *storage.SQLiteIndex
	manager *worker.Manager
}

func openProject() (*project, error) {
	if stateDir == "" {
		return nil, fmt.Errorf("%w; run 'stubgen init' first", config.ErrNotInitialized)
	}

	store := storage.NewJSONStore(stateDir)
	index, err := storage.NewSQLiteIndex(stateDir)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	manager, err := worker.NewManager(stateDir, cfg, store, index)
	if err != nil {
		index.Close()
		return nil, err
	}

	return &project{
		store:   store,
		index:   index,
		manager: manager,
	}, nil
}

func (p *project) Close() error {
	return p.index.Close()
}
