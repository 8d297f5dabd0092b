package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/apexquest/apexquest/internal/model"
)

type UserRepository interface {
	Upsert(ctx context.Context, user *model.User) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetBySubject(ctx context.Context, subjectID string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, updates map[string]any) error
	List(ctx context.Context) ([]*model.User, error)
	ListStaff(ctx context.Context) ([]*model.User, error)
	ListIDsExcept(ctx context.Context, excludeID string) ([]string, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

// Upsert creates or refreshes the row keyed by the identity provider's
// subject id, then reloads it so callers see the stored state.
func (r *userRepository) Upsert(ctx context.Context, user *model.User) (*model.User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subject_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "avatar_url", "role", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return nil, err
	}
	return r.GetBySubject(ctx, user.SubjectID)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetBySubject(ctx context.Context, subjectID string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "subject_id = ?", subjectID).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, updates map[string]any) error {
	updates["updated_at"] = time.Now()
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates).Error
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	var res []*model.User
	err := r.db.WithContext(ctx).Order("created_at").Find(&res).Error
	return res, err
}

func (r *userRepository) ListStaff(ctx context.Context) ([]*model.User, error) {
	var res []*model.User
	err := r.db.WithContext(ctx).
		Where("role IN ?", []model.Role{model.RoleModerator, model.RoleAdmin}).
		Find(&res).Error
	return res, err
}

func (r *userRepository) ListIDsExcept(ctx context.Context, excludeID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id <> ?", excludeID).
		Pluck("id", &ids).Error
	return ids, err
}
