// Package repomanager bundles the per-entity repositories behind a single
// construction point and owns running schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/lastmessage-app/server/internal/server/repositories/checks"
	"github.com/lastmessage-app/server/internal/server/repositories/messages"
	"github.com/lastmessage-app/server/internal/server/repositories/passcodes"
	"github.com/lastmessage-app/server/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	Checks() checks.Repository
	Messages() messages.Repository
	Passcodes() passcodes.Repository
}
