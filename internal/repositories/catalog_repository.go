package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	intconfig "repairshop/internal/config"
	intdb "repairshop/internal/db"
	"repairshop/internal/domain"
	"repairshop/internal/domain/models"

	"github.com/go-sql-driver/mysql"
)

const catalogTable = "catalog_items"

const catalogColumns = `
	id,
	kind,
	name,
	COALESCE(category,''),
	COALESCE(brand,''),
	COALESCE(model,''),
	price,
	in_stock,
	min_stock,
	COALESCE(description,''),
	COALESCE(compatibility,''),
	featured,
	created_at,
	updated_at`

// CatalogRepository reads and writes catalog_items. Reads always come back in
// primary-key order, which the catalog engine treats as store order.
type CatalogRepository struct {
	DB *sql.DB
}

func (r CatalogRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r CatalogRepository) conn(op string) (*sql.DB, error) {
	if db := r.db(); db != nil {
		return db, nil
	}
	return nil, domain.StoreUnavailableError{Op: op, Err: errors.New("database not connected")}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCatalogItem(s rowScanner) (models.CatalogItem, error) {
	var (
		it   models.CatalogItem
		kind string
	)
	err := s.Scan(
		&it.ID,
		&kind,
		&it.Name,
		&it.Category,
		&it.Brand,
		&it.Model,
		&it.Price,
		&it.InStock,
		&it.MinStock,
		&it.Description,
		&it.Compatibility,
		&it.Featured,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	it.Kind = models.Kind(kind)
	return it, err
}

// ListByKind returns a point-in-time snapshot of one kind.
func (r CatalogRepository) ListByKind(ctx context.Context, kind models.Kind) ([]models.CatalogItem, error) {
	return r.list(ctx, "list_by_kind",
		`SELECT `+catalogColumns+` FROM `+catalogTable+` WHERE kind = ? ORDER BY id ASC`, string(kind))
}

// ListAll returns every catalog row; the admin inventory views work across kinds.
func (r CatalogRepository) ListAll(ctx context.Context) ([]models.CatalogItem, error) {
	return r.list(ctx, "list_all", `SELECT `+catalogColumns+` FROM `+catalogTable+` ORDER BY id ASC`)
}

func (r CatalogRepository) list(ctx context.Context, op, query string, args ...any) ([]models.CatalogItem, error) {
	db, err := r.conn(op)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()

	items := []models.CatalogItem{}
	for rows.Next() {
		it, err := scanCatalogItem(rows)
		if err != nil {
			return nil, storeErr(op, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return items, nil
}

func (r CatalogRepository) GetByID(ctx context.Context, id int64) (models.CatalogItem, error) {
	db, err := r.conn("get")
	if err != nil {
		return models.CatalogItem{}, err
	}
	row := db.QueryRowContext(ctx, `SELECT `+catalogColumns+` FROM `+catalogTable+` WHERE id = ?`, id)
	it, err := scanCatalogItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CatalogItem{}, domain.NotFoundError{Resource: "catalog item", Err: err}
		}
		return models.CatalogItem{}, storeErr("get", err)
	}
	return it, nil
}

func (r CatalogRepository) Create(ctx context.Context, it models.CatalogItem) (int64, error) {
	db, err := r.conn("create")
	if err != nil {
		return 0, err
	}
	now := time.Now()
	res, err := db.ExecContext(ctx, `
		INSERT INTO `+catalogTable+`
			(kind, name, category, brand, model, price, in_stock, min_stock, description, compatibility, featured, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		string(it.Kind), it.Name, intdb.NullIfEmpty(it.Category), intdb.NullIfEmpty(it.Brand), it.Model,
		it.Price, it.InStock, it.MinStock, intdb.NullIfEmpty(it.Description), intdb.NullIfEmpty(it.Compatibility),
		it.Featured, now, now,
	)
	if err != nil {
		return 0, writeErr("create", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("create", err)
	}
	return id, nil
}

func (r CatalogRepository) Update(ctx context.Context, id int64, it models.CatalogItem) error {
	db, err := r.conn("update")
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `
		UPDATE `+catalogTable+`
		SET kind = ?, name = ?, category = ?, brand = ?, model = ?, price = ?, in_stock = ?, min_stock = ?,
		    description = ?, compatibility = ?, featured = ?, updated_at = ?
		WHERE id = ?
	`,
		string(it.Kind), it.Name, intdb.NullIfEmpty(it.Category), intdb.NullIfEmpty(it.Brand), it.Model,
		it.Price, it.InStock, it.MinStock, intdb.NullIfEmpty(it.Description), intdb.NullIfEmpty(it.Compatibility),
		it.Featured, time.Now(), id,
	)
	if err != nil {
		return writeErr("update", err)
	}
	return requireAffected(res, "update")
}

func (r CatalogRepository) Delete(ctx context.Context, id int64) error {
	db, err := r.conn("delete")
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM `+catalogTable+` WHERE id = ?`, id)
	if err != nil {
		return writeErr("delete", err)
	}
	return requireAffected(res, "delete")
}

// AdjustStock adds delta to in_stock inside a transaction. The row is locked
// while the new count is checked, so stock never drops below zero.
func (r CatalogRepository) AdjustStock(ctx context.Context, id int64, delta int) (models.CatalogItem, error) {
	db, err := r.conn("adjust_stock")
	if err != nil {
		return models.CatalogItem{}, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return models.CatalogItem{}, storeErr("adjust_stock", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+catalogColumns+` FROM `+catalogTable+` WHERE id = ? FOR UPDATE`, id)
	it, err := scanCatalogItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CatalogItem{}, domain.NotFoundError{Resource: "catalog item", Err: err}
		}
		return models.CatalogItem{}, storeErr("adjust_stock", err)
	}

	next := it.InStock + delta
	if next < 0 {
		return models.CatalogItem{}, domain.ConflictError{
			Resource: "stock",
			Msg:      fmt.Sprintf("only %d in stock, cannot remove %d", it.InStock, -delta),
		}
	}

	now := time.Now()
	if _, err := tx.ExecContext(ctx, `UPDATE `+catalogTable+` SET in_stock = ?, updated_at = ? WHERE id = ?`, next, now, id); err != nil {
		return models.CatalogItem{}, storeErr("adjust_stock", err)
	}
	if err := tx.Commit(); err != nil {
		return models.CatalogItem{}, storeErr("adjust_stock", err)
	}

	it.InStock = next
	it.UpdatedAt = now
	return it, nil
}

// EnsureSchema creates catalog_items on a fresh database.
func (r CatalogRepository) EnsureSchema(ctx context.Context) error {
	db, err := r.conn("ensure_schema")
	if err != nil {
		return err
	}
	if intdb.HasTable(ctx, db, catalogTable) {
		return r.upgradeSchema(ctx, db)
	}
	ddl := `
CREATE TABLE IF NOT EXISTS catalog_items (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	kind VARCHAR(20) NOT NULL,
	name VARCHAR(255) NOT NULL,
	category VARCHAR(100) NULL,
	brand VARCHAR(100) NULL,
	model VARCHAR(100) NOT NULL DEFAULT '',
	price DECIMAL(12,2) NOT NULL DEFAULT 0,
	in_stock INT UNSIGNED NOT NULL DEFAULT 0,
	min_stock INT UNSIGNED NOT NULL DEFAULT 0,
	description TEXT NULL,
	compatibility TEXT NULL,
	featured TINYINT(1) NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_kind_name_model (kind, name, model),
	KEY idx_kind (kind)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return storeErr("ensure_schema", err)
	}
	return nil
}

// columns added after the first release; older tables get them on startup
var catalogUpgrades = []struct{ column, ddl string }{
	{"min_stock", "ALTER TABLE catalog_items ADD COLUMN min_stock INT UNSIGNED NOT NULL DEFAULT 0 AFTER in_stock"},
	{"featured", "ALTER TABLE catalog_items ADD COLUMN featured TINYINT(1) NOT NULL DEFAULT 0 AFTER compatibility"},
}

func (r CatalogRepository) upgradeSchema(ctx context.Context, db *sql.DB) error {
	for _, u := range catalogUpgrades {
		if intdb.HasColumn(ctx, db, catalogTable, u.column) {
			continue
		}
		if _, err := db.ExecContext(ctx, u.ddl); err != nil {
			return storeErr("upgrade_schema", err)
		}
	}

	// model is part of the unique key; NULLs there never collide
	if intdb.ColumnNullable(ctx, db, catalogTable, "model") {
		for _, stmt := range []string{
			"UPDATE catalog_items SET model = '' WHERE model IS NULL",
			"ALTER TABLE catalog_items MODIFY model VARCHAR(100) NOT NULL DEFAULT ''",
		} {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return storeErr("upgrade_schema", err)
			}
		}
	}
	return nil
}

func writeErr(op string, err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return domain.ConflictError{Resource: "catalog item", Msg: "an item with this name and model already exists", Err: err}
	}
	return storeErr(op, err)
}

// storeErr wraps driver failures. Context errors pass through untouched: the
// caller gave up, the store did not fail.
func storeErr(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domain.StoreUnavailableError{Op: op, Err: err}
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr(op, err)
	}
	if affected == 0 {
		return domain.NotFoundError{Resource: "catalog item"}
	}
	return nil
}
