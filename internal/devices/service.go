package devices

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/careswap-app/careswap-backend/pkg/db/models"
	"github.com/careswap-app/careswap-backend/pkg/enums"
	pkgerrors "github.com/careswap-app/careswap-backend/pkg/errors"
)

// RegisterInput carries a push token registration.
type RegisterInput struct {
	UserID   uuid.UUID
	Token    string
	Platform enums.DevicePlatform
}

// Service manages the per-user push token set.
type Service interface {
	Register(ctx context.Context, input RegisterInput) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.DeviceToken, error)
}

type service struct {
	repo Repository
}

// NewService builds a device token service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("devices repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	token := strings.TrimSpace(input.Token)
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "device token required")
	}
	if !input.Platform.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid device platform")
	}

	record := &models.DeviceToken{
		UserID:   input.UserID,
		Token:    token,
		Platform: input.Platform,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store device token")
	}
	return nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.DeviceToken, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListTokensForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list device tokens")
	}
	return rows, nil
}
