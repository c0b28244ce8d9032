package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb"
)

const retryCount = 5

const lookupHostQuery = "SELECT Hostname, Source, ThreatType, PlatformType FROM FeedTable WHERE Hostname = @p1 OR Hostname = @p2"

type FeedEntry struct {
	Hostname     string
	Source       string
	ThreatType   string
	PlatformType sql.NullString
}

type DatabaseConnection struct {
	Con            *sql.DB
	LookupHostStmt *sql.Stmt
}

func ConnectToDb(ctx context.Context, dsn string) (*DatabaseConnection, error) {
	con, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("open feed database: %w", err)
	}

	for j := 0; j < retryCount; j++ {
		if err = con.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			con.Close()
			return nil, ctx.Err()
		case <-time.After(time.Duration(j+1) * 200 * time.Millisecond):
		}
	}
	if err != nil {
		con.Close()
		return nil, fmt.Errorf("ping feed database: %w", err)
	}

	stmt, err := con.PrepareContext(ctx, lookupHostQuery)
	if err != nil {
		con.Close()
		return nil, fmt.Errorf("prepare host lookup: %w", err)
	}

	return &DatabaseConnection{Con: con, LookupHostStmt: stmt}, nil
}

func (dbinst *DatabaseConnection) Close() error {
	if err := dbinst.LookupHostStmt.Close(); err != nil {
		dbinst.Con.Close()
		return err
	}
	return dbinst.Con.Close()
}

// LookupHost returns the feed rows listing host or its registrable domain.
func (dbinst *DatabaseConnection) LookupHost(ctx context.Context, host, domain string) ([]FeedEntry, error) {
	host = strings.ToLower(host)
	domain = strings.ToLower(domain)
	if domain == "" {
		domain = host
	}

	rows, err := dbinst.LookupHostStmt.QueryContext(ctx, host, domain)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []FeedEntry
	for rows.Next() {
		var e FeedEntry
		if err := rows.Scan(&e.Hostname, &e.Source, &e.ThreatType, &e.PlatformType); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
