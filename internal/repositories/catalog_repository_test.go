package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"repairshop/internal/domain"
	"repairshop/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalogRowColumns = []string{
	"id", "kind", "name", "category", "brand", "model", "price", "in_stock", "min_stock",
	"description", "compatibility", "featured", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (CatalogRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return CatalogRepository{DB: db}, mock
}

func TestListByKindScansRowsInStoreOrder(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .* FROM catalog_items WHERE kind = \\? ORDER BY id ASC").
		WithArgs("part").
		WillReturnRows(sqlmock.NewRows(catalogRowColumns).
			AddRow(1, "part", "OLED Screen", "screen", "Apple", "iPhone 13", "129.90", 4, 2, "", "iPhone 13, iPhone 13 Pro", true, created, created).
			AddRow(2, "part", "Battery", "battery", "Apple", "", "35.00", 0, 3, "OEM", "", false, created, created))

	items, err := repo.ListByKind(context.Background(), models.KindPart)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, models.KindPart, items[0].Kind)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("129.9")))
	assert.Equal(t, 4, items[0].InStock)
	assert.True(t, items[0].Featured)
	assert.Equal(t, "iPhone 13, iPhone 13 Pro", items[0].Compatibility)
	assert.Equal(t, created, items[0].CreatedAt)
	assert.Equal(t, int64(2), items[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByKindEmptyReturnsEmptySlice(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM catalog_items").WillReturnRows(sqlmock.NewRows(catalogRowColumns))

	items, err := repo.ListByKind(context.Background(), models.KindDevice)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestListSurfacesStoreUnavailable(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM catalog_items").WillReturnError(errors.New("dial tcp: connection refused"))

	_, err := repo.ListAll(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsStoreUnavailable(err))
}

func TestListPassesContextErrorsThrough(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM catalog_items").WillReturnError(context.Canceled)

	_, err := repo.ListByKind(context.Background(), models.KindPart)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, domain.IsStoreUnavailable(err))
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM catalog_items WHERE id = \\?").WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 9)
	assert.True(t, domain.IsNotFound(err))
}

func TestCreateMapsDuplicateToConflict(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("INSERT INTO catalog_items").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := repo.Create(context.Background(), models.CatalogItem{Kind: models.KindPart, Name: "Screen"})
	assert.True(t, domain.IsConflict(err))
}

func TestCreateReturnsInsertID(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("INSERT INTO catalog_items").
		WithArgs("accessory", "Case", "cases", nil, "", sqlmock.AnyArg(), 5, 1, nil, nil, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))

	id, err := repo.Create(context.Background(), models.CatalogItem{
		Kind:     models.KindAccessory,
		Name:     "Case",
		Category: "cases",
		Price:    decimal.NewFromInt(12),
		InStock:  5,
		MinStock: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingRowIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("DELETE FROM catalog_items").WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 3)
	assert.True(t, domain.IsNotFound(err))
}

func TestAdjustStockCommits(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM catalog_items WHERE id = \\? FOR UPDATE").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(catalogRowColumns).
			AddRow(7, "part", "Battery", "battery", "Apple", "", "35.00", 2, 3, "", "", false, now, now))
	mock.ExpectExec("UPDATE catalog_items SET in_stock = \\?").
		WithArgs(5, sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	it, err := repo.AdjustStock(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, it.InStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStockBelowZeroConflicts(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(catalogRowColumns).
			AddRow(7, "part", "Battery", "battery", "Apple", "", "35.00", 2, 3, "", "", false, now, now))
	mock.ExpectRollback()

	_, err := repo.AdjustStock(context.Background(), 7, -3)
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaUpgradesExistingTable(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("information_schema\\.tables").WithArgs("catalog_items").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("catalog_items"))
	mock.ExpectQuery("information_schema\\.columns").WithArgs("catalog_items", "min_stock").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("min_stock"))
	mock.ExpectQuery("information_schema\\.columns").WithArgs("catalog_items", "featured").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))
	mock.ExpectExec("ALTER TABLE catalog_items ADD COLUMN featured").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT is_nullable").WithArgs("catalog_items", "model").
		WillReturnRows(sqlmock.NewRows([]string{"is_nullable"}).AddRow("NO"))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaMakesModelNotNull(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("information_schema\\.tables").WithArgs("catalog_items").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("catalog_items"))
	for _, col := range []string{"min_stock", "featured"} {
		mock.ExpectQuery("information_schema\\.columns").WithArgs("catalog_items", col).
			WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow(col))
	}
	mock.ExpectQuery("SELECT is_nullable").WithArgs("catalog_items", "model").
		WillReturnRows(sqlmock.NewRows([]string{"is_nullable"}).AddRow("YES"))
	mock.ExpectExec("UPDATE catalog_items SET model = '' WHERE model IS NULL").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("ALTER TABLE catalog_items MODIFY model").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithoutModelStillHitsUniqueKey(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("INSERT INTO catalog_items").
		WithArgs("part", "Battery", nil, nil, "", sqlmock.AnyArg(), 0, 0, nil, nil, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'part-Battery-' for key 'uniq_kind_name_model'"})

	_, err := repo.Create(context.Background(), models.CatalogItem{Kind: models.KindPart, Name: "Battery"})
	assert.True(t, domain.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaCreatesMissingTable(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("information_schema\\.tables").WithArgs("catalog_items").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS catalog_items").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByLogin(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM admin_users").WithArgs("owner@shop.test").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "status"}).
			AddRow(1, "Owner", "owner@shop.test", "$2a$hash", "owner", "active"))

	u, hash, err := AdminUserRepository{DB: db}.FindByLogin(context.Background(), " Owner@Shop.test ")
	require.NoError(t, err)
	assert.Equal(t, "owner", u.Role)
	assert.Equal(t, "$2a$hash", hash)
}

func TestEnsureAdminIsIdempotentInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO admin_users .* ON DUPLICATE KEY UPDATE").
		WithArgs("Owner", "owner@shop.test", "$2a$hash").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, AdminUserRepository{DB: db}.EnsureAdmin(context.Background(), "Owner", "Owner@shop.test", "$2a$hash"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
