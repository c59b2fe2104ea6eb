package repository

import userdomain "resurface-backend/internal/user/domain"

// UserRepository defines the interface for user lookups used by the batch
// runners.
type UserRepository interface {
	FindByID(id string) (*userdomain.User, error)
	FindByIDs(ids []string) (map[string]*userdomain.User, error)
	FindAll() ([]*userdomain.User, error)
}
