package repomanager

import (
	"context"
	"database/sql"

	"github.com/mweller/jotter/internal/dbx"
	"github.com/mweller/jotter/internal/server/repositories/categories"
	"github.com/mweller/jotter/internal/server/repositories/entries"
	"github.com/mweller/jotter/internal/server/repositories/insights"
	"github.com/mweller/jotter/internal/server/repositories/moodlogs"
	"github.com/mweller/jotter/internal/server/repositories/patterns"
	"github.com/mweller/jotter/internal/server/repositories/refreshtokens"
	"github.com/mweller/jotter/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Entries(db dbx.DBTX) entries.Repository
	Insights(db dbx.DBTX) insights.Repository
	MoodLogs(db dbx.DBTX) moodlogs.Repository
	Categories(db dbx.DBTX) categories.Repository
	Patterns(db dbx.DBTX) patterns.Repository
}
