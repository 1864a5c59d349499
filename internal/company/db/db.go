package db

import (
	"context"
	"errors"
	"fmt"

	dbmodels "github.com/gartstein/olt/internal/company/db/models"
	e "github.com/gartstein/olt/internal/company/errors"
	"github.com/gartstein/olt/internal/company/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Repository reads the company record. It never writes to the companies table.
type Repository struct {
	db *gorm.DB
}

type Config struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Path is the database file used by the sqlite driver.
	Path string
}

func NewRepository(cfg *Config) (*Repository, error) {
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Repository{db: db}, nil
}

func openDialector(cfg *Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		return postgres.Open(dsn), nil
	case DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("%w: sqlite driver requires a path", e.ErrInvalidInput)
		}
		return sqlite.Open(cfg.Path), nil
	default:
		return nil, fmt.Errorf("%w: unsupported database driver %q", e.ErrInvalidInput, cfg.Driver)
	}
}

// FirstCompanyName returns the name of the oldest company record,
// selecting only the name column.
func (r *Repository) FirstCompanyName(ctx context.Context) (string, error) {
	var company dbmodels.Company
	result := r.db.WithContext(ctx).
		Select("name").
		Order("created_at").
		Take(&company)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", e.ErrNotFound
		}
		return "", result.Error
	}
	return company.Name, nil
}

// FirstCompany returns the oldest company record with all of its fields.
func (r *Repository) FirstCompany(ctx context.Context) (*models.CompanyInfo, error) {
	var company dbmodels.Company
	result := r.db.WithContext(ctx).
		Order("created_at").
		Take(&company)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return toCompanyInfo(&company), nil
}

func toCompanyInfo(c *dbmodels.Company) *models.CompanyInfo {
	createdAt, updatedAt := c.CreatedAt, c.UpdatedAt
	return &models.CompanyInfo{
		ID:         c.ID.String(),
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		BaseURL:    c.BaseURL,
		AdminPhone: c.AdminPhone,
		Logo:       c.Logo,
		CreatedAt:  &createdAt,
		UpdatedAt:  &updatedAt,
	}
}

func (r *Repository) Close() error {
	return closeDB(r.db)
}

func closeDB(gdb *gorm.DB) error {
	db, err := gdb.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
