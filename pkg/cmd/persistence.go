// Package cmd provides the shared initialization helpers used by the
// command-line entry points.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bdedica/tramite/pkg/persistence"
	"github.com/bdedica/tramite/pkg/persistence/memory"
	"github.com/bdedica/tramite/pkg/persistence/postgresql"
)

// NewPersistence builds the persistence layer from a database URL.
// postgres:// and postgresql:// URLs select PostgreSQL; "memory" keeps
// everything in process for local runs.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch {
	case databaseURL == "memory":
		return memory.NewStore()
	case strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://"):
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic("failed to initialize PostgreSQL persistence: " + err.Error())
		}

		return p
	default:
		panic("unsupported database URL: " + databaseURL)
	}
}
