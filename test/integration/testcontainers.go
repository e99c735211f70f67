package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const adminToken = "integration-admin-token"

// TestContext holds all the resources needed for integration tests: a
// PostgreSQL container hosting the master database and a fake admin API
// standing in for the backend's sync-all endpoint.
type TestContext struct {
	DB          *gorm.DB
	RawDB       *sql.DB
	Container   testcontainers.Container
	DatabaseURL string
	AdminAPI    *httptest.Server
	AdminToken  string
	HTTPClient  *http.Client

	// SyncRequests counts requests that reached the fake admin API, so
	// fail-fast scenarios can assert nothing went over the wire.
	SyncRequests atomic.Int64

	// MigrationsDir is the absolute path to db/migrations in the project.
	MigrationsDir string
}

// NewTestContext starts a PostgreSQL testcontainer and the fake admin API.
func NewTestContext(ctx context.Context) (*TestContext, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %w", err)
	}
	migrationsDir := filepath.Join(projectRoot, "db", "migrations")

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("zphere_master"),
		tcpostgres.WithUsername("zphere"),
		tcpostgres.WithPassword("zphere"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}
	connStr := fmt.Sprintf("postgres://zphere:zphere@%s:%s/zphere_master?sslmode=disable", host, port.Port())

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	rawDB, err := db.DB()
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get raw db: %w", err)
	}

	tc := &TestContext{
		DB:            db,
		RawDB:         rawDB,
		Container:     pgContainer,
		DatabaseURL:   connStr,
		AdminToken:    adminToken,
		HTTPClient:    &http.Client{Timeout: 10 * time.Second},
		MigrationsDir: migrationsDir,
	}
	tc.AdminAPI = httptest.NewServer(http.HandlerFunc(tc.handleAdminAPI))

	return tc, nil
}

// handleAdminAPI emulates the backend's bulk tenant synchronization. It
// requires the admin bearer token and reports one processed organization per
// row in the master database.
func (tc *TestContext) handleAdminAPI(w http.ResponseWriter, r *http.Request) {
	tc.SyncRequests.Add(1)

	if r.Method != http.MethodPost || r.URL.Path != "/admin/tenants/migrations/sync-all" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+tc.AdminToken {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid admin token"}`))
		return
	}

	var count int64
	if err := tc.DB.Table("organizations").Count(&count).Error; err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"master database unavailable"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"organizations_processed": count,
		"errors":                  []interface{}{},
	})
}

// Close cleans up all test resources.
func (tc *TestContext) Close(ctx context.Context) {
	if tc.AdminAPI != nil {
		tc.AdminAPI.Close()
	}
	if tc.RawDB != nil {
		_ = tc.RawDB.Close()
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}

// findProjectRoot locates the project root directory
func findProjectRoot() (string, error) {
	paths := []string{
		"../..",
		"..",
		".",
	}

	for _, p := range paths {
		goMod := filepath.Join(p, "go.mod")
		if _, err := os.Stat(goMod); err == nil {
			return filepath.Abs(p)
		}
	}

	return "", fmt.Errorf("project root not found (looking for go.mod)")
}
