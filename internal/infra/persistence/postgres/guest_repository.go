package postgres

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// guestRepository implements the domain.GuestRepository interface using GORM.
type guestRepository struct {
	db *gorm.DB
}

// NewGuestRepository is the constructor for guestRepository.
func NewGuestRepository(db *gorm.DB) repository.GuestRepository {
	return &guestRepository{db: db}
}

func (repo *guestRepository) Create(ctx context.Context, guest *entity.GuestIdentity) error {
	guestM := &model.GuestModel{
		ID:           ensureID(guest.ID),
		SessionToken: guest.SessionToken,
		ExpiresAt:    guest.ExpiresAt,
		CreatedAt:    guest.CreatedAt,
	}
	if err := repo.db.WithContext(ctx).Create(guestM).Error; err != nil {
		return errors.Wrap(err, "failed to create guest identity")
	}

	guest.ID = guestM.ID
	guest.CreatedAt = guestM.CreatedAt

	return nil
}

func (repo *guestRepository) FindByToken(ctx context.Context, token string) (*entity.GuestIdentity, error) {
	return repo.findOne(ctx, "session_token = ?", token)
}

func (repo *guestRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.GuestIdentity, error) {
	return repo.findOne(ctx, "id = ?", id)
}

func (repo *guestRepository) findOne(ctx context.Context, query string, arg any) (*entity.GuestIdentity, error) {
	var guestM model.GuestModel
	if err := repo.db.WithContext(ctx).Where(query, arg).First(&guestM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrGuestNotFound
		}

		return nil, errors.Wrap(err, "failed to find guest identity")
	}

	return &entity.GuestIdentity{
		ID:           guestM.ID,
		SessionToken: guestM.SessionToken,
		ExpiresAt:    guestM.ExpiresAt,
		CreatedAt:    guestM.CreatedAt,
	}, nil
}

func (repo *guestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.GuestModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete guest identity")
	}
	if result.RowsAffected == 0 {
		return repository.ErrGuestNotFound
	}

	return nil
}
