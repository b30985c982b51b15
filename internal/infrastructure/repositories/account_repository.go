package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Alphonse-K/freres-unis/domain"
)

// AccountRepository implements domain.AccountRepository over the three
// account tables. Roles are preloaded so RoleNames is usable straight
// after a find.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) domain.AccountRepository {
	return &AccountRepository{db: db}
}

// FindStaffByEmail implements domain.AccountRepository.
func (r *AccountRepository) FindStaffByEmail(ctx context.Context, email string) (*domain.StaffUser, error) {
	var u domain.StaffUser
	err := r.db.WithContext(ctx).Preload("Roles").Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindPOSUserByPhone implements domain.AccountRepository.
func (r *AccountRepository) FindPOSUserByPhone(ctx context.Context, phone string) (*domain.POSUser, error) {
	var u domain.POSUser
	err := r.db.WithContext(ctx).Preload("Roles").Where("phone = ?", phone).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindClientByPhone implements domain.AccountRepository.
func (r *AccountRepository) FindClientByPhone(ctx context.Context, phone string) (*domain.Client, error) {
	var c domain.Client
	err := r.db.WithContext(ctx).Preload("Roles").Where("phone = ?", phone).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByKind implements domain.AccountRepository.
func (r *AccountRepository) FindByKind(ctx context.Context, kind domain.AccountKind, id uint) (domain.Account, error) {
	var account domain.Account
	switch kind {
	case domain.AccountKindStaff:
		account = &domain.StaffUser{}
	case domain.AccountKindPOS:
		account = &domain.POSUser{}
	case domain.AccountKindClient:
		account = &domain.Client{}
	default:
		return nil, domain.ErrAccountNotFound
	}

	err := r.db.WithContext(ctx).Preload("Roles").Where("id = ?", id).First(account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// Save implements domain.AccountRepository. Associations are skipped;
// role assignment goes through ReplaceRoles.
func (r *AccountRepository) Save(ctx context.Context, account domain.Account) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(account).Error
}

// ReplaceRoles implements domain.AccountRepository.
func (r *AccountRepository) ReplaceRoles(ctx context.Context, account domain.Account, roles []domain.Role) error {
	return r.db.WithContext(ctx).Model(account).Association("Roles").Replace(&roles)
}
