package testutil

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
)

// TestSchema represents an isolated database schema created for one test
type TestSchema struct {
	Name string
	// DB is a dedicated connection pool whose search_path points at the
	// schema, so repositories work against it without schema awareness.
	DB *sqlx.DB
}

// SchemaManager creates isolated schemas so tests never see each other's
// rows, even when they share one Postgres container.
type SchemaManager struct {
	db      *sqlx.DB
	dsn     string
	schemas []TestSchema
	mu      sync.Mutex
}

// NewSchemaManager creates a new schema manager for tests
func NewSchemaManager(db *sqlx.DB, dsn string) *SchemaManager {
	return &SchemaManager{
		db:      db,
		dsn:     dsn,
		schemas: make([]TestSchema, 0),
	}
}

// CreateSchema creates a fresh schema, applies the given migrations inside
// it, and returns a connection pool bound to it.
//
// Usage:
//
//	sm := testutil.NewSchemaManager(db, container.DSN)
//	schema, err := sm.CreateSchema(ctx, "fifo-deduct", testutil.InventoryMigrations())
//	repo := repository.NewStockRepository(database.Wrap(schema.DB, log))
func (sm *SchemaManager) CreateSchema(ctx context.Context, name string, migrations []string) (*TestSchema, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	schemaName := "test_" + strings.ReplaceAll(strings.ToLower(name), "-", "_")

	if _, err := sm.db.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName)); err != nil {
		return nil, fmt.Errorf("failed to create test schema: %w", err)
	}

	schemaDB, err := sqlx.ConnectContext(ctx, "postgres", dsnWithSearchPath(sm.dsn, schemaName))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test schema: %w", err)
	}

	for _, migration := range migrations {
		if _, err := schemaDB.ExecContext(ctx, migration); err != nil {
			schemaDB.Close()
			return nil, fmt.Errorf("failed to apply migration: %w", err)
		}
	}

	s := TestSchema{Name: schemaName, DB: schemaDB}
	sm.schemas = append(sm.schemas, s)
	return &s, nil
}

// DropSchema removes a test schema completely
func (sm *SchemaManager) DropSchema(ctx context.Context, s *TestSchema) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if s.DB != nil {
		s.DB.Close()
	}

	if _, err := sm.db.ExecContext(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", s.Name)); err != nil {
		return fmt.Errorf("failed to drop test schema: %w", err)
	}

	for i, tracked := range sm.schemas {
		if tracked.Name == s.Name {
			sm.schemas = append(sm.schemas[:i], sm.schemas[i+1:]...)
			break
		}
	}

	return nil
}

// Cleanup drops all schemas created by this manager.
// Call this in TestMain or test cleanup.
func (sm *SchemaManager) Cleanup(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	var lastErr error
	for _, s := range sm.schemas {
		if s.DB != nil {
			s.DB.Close()
		}
		if _, err := sm.db.ExecContext(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", s.Name)); err != nil {
			lastErr = err
		}
	}

	sm.schemas = make([]TestSchema, 0)
	return lastErr
}

// dsnWithSearchPath appends a search_path option to a postgres:// URL DSN
func dsnWithSearchPath(dsn, schema string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "options=" + url.QueryEscape("-c search_path="+schema)
}

// InventoryMigrations returns the inventory core migrations for tests
func InventoryMigrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS stock_records (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			branch_id VARCHAR(100) NOT NULL,
			product_id VARCHAR(100) NOT NULL,
			current_stock INTEGER NOT NULL DEFAULT 0,
			min_stock INTEGER NOT NULL DEFAULT 0,
			max_stock INTEGER NOT NULL DEFAULT 0,
			unit_cost NUMERIC(12,2) NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'Out of Stock',
			last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_restocked TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT stock_records_branch_product_key UNIQUE (branch_id, product_id),
			CONSTRAINT stock_records_current_stock_non_negative CHECK (current_stock >= 0)
		)`,

		`CREATE TABLE IF NOT EXISTS product_batches (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			batch_number VARCHAR(100) NOT NULL,
			product_id VARCHAR(100) NOT NULL,
			branch_id VARCHAR(100) NOT NULL,
			purchase_order_id VARCHAR(100) NOT NULL,
			quantity INTEGER NOT NULL,
			remaining_quantity INTEGER NOT NULL,
			unit_cost NUMERIC(12,2) NOT NULL DEFAULT 0,
			expiration_date DATE,
			received_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			received_by VARCHAR(255) NOT NULL DEFAULT 'system',
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT product_batches_batch_number_key UNIQUE (batch_number),
			CONSTRAINT product_batches_quantity_positive CHECK (quantity > 0),
			CONSTRAINT product_batches_remaining_within_quantity CHECK (remaining_quantity >= 0 AND remaining_quantity <= quantity),
			CONSTRAINT product_batches_status_valid CHECK (status IN ('active', 'expired', 'depleted'))
		)`,

		`CREATE INDEX IF NOT EXISTS idx_product_batches_fifo
			ON product_batches (branch_id, product_id, status, expiration_date, received_date)`,

		`CREATE TABLE IF NOT EXISTS inventory_movements (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			branch_id VARCHAR(100) NOT NULL,
			product_id VARCHAR(100) NOT NULL,
			type VARCHAR(20) NOT NULL,
			quantity INTEGER NOT NULL,
			previous_stock INTEGER NOT NULL,
			new_stock INTEGER NOT NULL,
			reason VARCHAR(255) NOT NULL DEFAULT '',
			notes TEXT,
			batch_deductions JSONB,
			created_by VARCHAR(255) NOT NULL DEFAULT 'system',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT inventory_movements_movement_type_valid CHECK (type IN ('stock_in', 'stock_out'))
		)`,

		`CREATE INDEX IF NOT EXISTS idx_inventory_movements_branch_product
			ON inventory_movements (branch_id, product_id, created_at DESC)`,
	}
}
