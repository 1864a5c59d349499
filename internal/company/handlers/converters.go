package handlers

import (
	"errors"
	"fmt"

	e "github.com/gartstein/olt/internal/company/errors"
	"github.com/gartstein/olt/internal/company/models"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type companyNameResponse struct {
	Name string `json:"name"`
}

type setLocaleRequest struct {
	Locale string `json:"locale" validate:"required,oneof=id en"`
}

// companyPatchRequest is a partial CompanySettings; absent fields are left untouched.
type companyPatchRequest struct {
	Name       *string `json:"name" validate:"omitnil,min=1,max=255"`
	Email      *string `json:"email" validate:"omitnil,email"`
	Phone      *string `json:"phone" validate:"omitnil,min=1,max=64"`
	Address    *string `json:"address" validate:"omitnil,min=1,max=1000"`
	BaseURL    *string `json:"baseUrl" validate:"omitnil,len=0|url"`
	AdminPhone *string `json:"adminPhone" validate:"omitnil,min=1,max=64"`
	Logo       *string `json:"logo" validate:"omitnil,max=1000"`
}

// toPatch converts the request body into the store's patch model.
func (r *companyPatchRequest) toPatch() models.CompanySettingsPatch {
	return models.CompanySettingsPatch{
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		BaseURL:    r.BaseURL,
		AdminPhone: r.AdminPhone,
		Logo:       r.Logo,
	}
}

// mapServiceError maps domain errors to gRPC status codes, which the gateway
// renders as HTTP status codes.
func (h *SettingsHandler) mapServiceError(err error) error {
	switch {
	case errors.Is(err, e.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, e.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		return status.Error(codes.Internal, fmt.Sprintf("internal server error: %v", err))
	}
}
