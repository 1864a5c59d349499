// Package controller implements the company info provider: a read of the
// stored company record that always yields a usable value, falling back to
// a default identity when the record is absent or the store fails.
package controller

import (
	"context"
	"errors"
	"os"

	e "github.com/gartstein/olt/internal/company/errors"
	"github.com/gartstein/olt/internal/company/models"
	"go.uber.org/zap"
)

// DefaultBaseURLEnv is the environment variable consulted for the fallback base URL.
const DefaultBaseURLEnv = "APP_URL"

// Repository defines the read access to the stored company record.
type Repository interface {
	FirstCompanyName(ctx context.Context) (string, error)
	FirstCompany(ctx context.Context) (*models.CompanyInfo, error)
}

// CompanyInfoService exposes the company identity to the presentation layer.
type CompanyInfoService struct {
	repo       Repository
	logger     *zap.Logger
	baseURLEnv string
	getenv     func(string) string
}

// NewCompanyInfoService constructs a CompanyInfoService. baseURLEnv names the
// environment variable holding the fallback base URL; empty selects APP_URL.
func NewCompanyInfoService(repo Repository, baseURLEnv string, logger *zap.Logger) *CompanyInfoService {
	if baseURLEnv == "" {
		baseURLEnv = DefaultBaseURLEnv
	}
	return &CompanyInfoService{
		repo:       repo,
		logger:     logger.Named("company_info"),
		baseURLEnv: baseURLEnv,
		getenv:     os.Getenv,
	}
}

// CompanyName returns the stored company name, or DefaultCompanyName when
// there is no record, the name is empty, or the query fails.
func (s *CompanyInfoService) CompanyName(ctx context.Context) string {
	name, err := s.repo.FirstCompanyName(ctx)
	if err != nil {
		if !errors.Is(err, e.ErrNotFound) {
			s.logger.Error("Error fetching company name", zap.Error(err))
		}
		return models.DefaultCompanyName
	}
	if name == "" {
		return models.DefaultCompanyName
	}
	return name
}

// CompanyInfo returns the stored company record unchanged, or a fallback
// carrying DefaultCompanyName and the base URL from the environment.
func (s *CompanyInfoService) CompanyInfo(ctx context.Context) *models.CompanyInfo {
	company, err := s.repo.FirstCompany(ctx)
	if err != nil {
		if !errors.Is(err, e.ErrNotFound) {
			s.logger.Error("Error fetching company info", zap.Error(err))
		}
		return s.fallback()
	}
	if company == nil {
		return s.fallback()
	}
	return company
}

// fallback reads the environment on every call so that changes are picked up without a restart.
func (s *CompanyInfoService) fallback() *models.CompanyInfo {
	return models.FallbackCompanyInfo(s.getenv(s.baseURLEnv))
}
