package repomanager

import (
	"context"
	"database/sql"

	"github.com/mbazhenov/authkeeper/internal/dbx"
	"github.com/mbazhenov/authkeeper/internal/server/repositories/identities"
	"github.com/mbazhenov/authkeeper/internal/server/repositories/sessions"
)

// RepositoryManager vends repositories bound to a DBTX (a *sql.DB or an
// open transaction) and exposes the schema migration hook.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Identities(db dbx.DBTX) identities.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
