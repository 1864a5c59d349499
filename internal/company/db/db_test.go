package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	dbmodels "github.com/gartstein/olt/internal/company/db/models"
	e "github.com/gartstein/olt/internal/company/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB initializes a throwaway SQLite database with the companies table.
func SetupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "company.db")), &gorm.Config{})
	require.NoError(t, err, "failed to open test database")

	err = db.AutoMigrate(&dbmodels.Company{})
	require.NoError(t, err, "failed to migrate test database")

	repo := &Repository{db: db}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func insertCompany(t *testing.T, repo *Repository, company *dbmodels.Company) {
	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	require.NoError(t, repo.db.Create(company).Error, "seeding company should succeed")
}

func TestFirstCompanyName(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	insertCompany(t, repo, &dbmodels.Company{Name: "Acme", Email: "info@acme.test"})

	name, err := repo.FirstCompanyName(ctx)
	assert.NoError(t, err, "FirstCompanyName should succeed")
	assert.Equal(t, "Acme", name)
}

func TestFirstCompanyName_OldestWins(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	insertCompany(t, repo, &dbmodels.Company{Name: "Newer", CreatedAt: now})
	insertCompany(t, repo, &dbmodels.Company{Name: "Older", CreatedAt: now.Add(-time.Hour)})

	name, err := repo.FirstCompanyName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Older", name)
}

func TestFirstCompanyName_NotFound(t *testing.T) {
	repo := SetupTestDB(t)

	_, err := repo.FirstCompanyName(context.Background())
	assert.ErrorIs(t, err, e.ErrNotFound, "empty table should yield ErrNotFound")
}

func TestFirstCompanyName_SkipsDeleted(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	deleted := &dbmodels.Company{Name: "Gone"}
	insertCompany(t, repo, deleted)
	require.NoError(t, repo.db.Delete(deleted).Error)

	_, err := repo.FirstCompanyName(ctx)
	assert.ErrorIs(t, err, e.ErrNotFound, "soft-deleted rows are not visible")
}

func TestFirstCompanyName_ClosedDB(t *testing.T) {
	repo := SetupTestDB(t)
	require.NoError(t, repo.Close())

	_, err := repo.FirstCompanyName(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, e.ErrNotFound)
}

func TestFirstCompany(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	company := &dbmodels.Company{
		Name:       "Acme",
		Email:      "info@acme.test",
		Phone:      "+62 1",
		Address:    "Bandung",
		BaseURL:    "https://acme.test",
		AdminPhone: "+62 2",
		Logo:       "/logo.png",
	}
	insertCompany(t, repo, company)

	info, err := repo.FirstCompany(ctx)
	require.NoError(t, err, "FirstCompany should succeed")
	assert.Equal(t, company.ID.String(), info.ID)
	assert.Equal(t, "Acme", info.Name)
	assert.Equal(t, "info@acme.test", info.Email)
	assert.Equal(t, "https://acme.test", info.BaseURL)
	assert.Equal(t, "+62 2", info.AdminPhone)
	assert.Equal(t, "/logo.png", info.Logo)
	assert.NotNil(t, info.CreatedAt)
}

func TestFirstCompany_NotFound(t *testing.T) {
	repo := SetupTestDB(t)

	_, err := repo.FirstCompany(context.Background())
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestNewRepository_SQLite(t *testing.T) {
	repo, err := NewRepository(&Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "c.db")})
	require.NoError(t, err)
	defer repo.Close()

	// the table is owned by the administration tooling, so a bare database fails the query
	_, err = repo.FirstCompanyName(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, e.ErrNotFound)
}

func TestNewRepository_InvalidConfig(t *testing.T) {
	_, err := NewRepository(&Config{Driver: "mysql"})
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	_, err = NewRepository(&Config{Driver: DriverSQLite})
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}
