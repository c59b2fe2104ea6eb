package repository

import (
	userdomain "resurface-backend/internal/user/domain"

	"gorm.io/gorm"
)

// userRepository implements UserRepository backed by GORM
type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(id string) (*userdomain.User, error) {
	var user userdomain.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ids []string) (map[string]*userdomain.User, error) {
	result := make(map[string]*userdomain.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []*userdomain.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

func (r *userRepository) FindAll() ([]*userdomain.User, error) {
	var users []*userdomain.User
	err := r.db.Order("created_at ASC").Find(&users).Error
	return users, err
}
