// Package migrations holds the PostgreSQL schema, applied with goose on startup.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/sbilibin2017/gw-videotube/internal/logger"
)

//go:embed *.sql
var FS embed.FS

type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	logger.Log.Infof(strings.TrimSuffix(format, "\n"), v...)
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	logger.Log.Fatalf(strings.TrimSuffix(format, "\n"), v...)
}

// Up applies all pending migrations.
func Up(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(FS)
	goose.SetLogger(gooseLogger{})

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
