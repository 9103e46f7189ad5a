package domain

import "context"

type UserFinder interface {
	FindByID(ctx context.Context, id string) (User, error)
}

type UserRepository interface {
	UserFinder
	Create(ctx context.Context, record CreateUserRecord) (User, error)
}
