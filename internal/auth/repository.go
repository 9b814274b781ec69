package auth

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PermissionStore interface {
	HasPermission(ctx context.Context, userID, name string) (bool, error)
	ListPermissions(ctx context.Context, userID string) ([]string, error)
	Grant(ctx context.Context, userID, name string) error
}

type permissionStore struct {
	db *gorm.DB
}

func NewPermissionStore(db *gorm.DB) PermissionStore {
	return &permissionStore{db: db}
}

func (r *permissionStore) HasPermission(ctx context.Context, userID, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Permission{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *permissionStore) ListPermissions(ctx context.Context, userID string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&Permission{}).
		Where("user_id = ?", userID).
		Order("name ASC").
		Pluck("name", &names).Error
	return names, err
}

// Grant is idempotent
func (r *permissionStore) Grant(ctx context.Context, userID, name string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Permission{UserID: userID, Name: name}).Error
}
