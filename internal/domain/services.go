package domain

import "context"

type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (User, error)
}
