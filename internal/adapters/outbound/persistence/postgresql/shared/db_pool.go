package shared

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// NewDatabasePool opens the shared connection pool used by the ingress
// server and the relay worker. sql.Open only validates the DSN, so a bad
// URL is a programming error rather than a runtime condition.
func NewDatabasePool(databaseURL string, logger *log.Logger) *sql.DB {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		panic(err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	if logger != nil {
		logger.Printf("database pool initialized")
	}

	return db
}
