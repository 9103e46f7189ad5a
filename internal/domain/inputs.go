package domain

type CreateUserInput struct {
	Email        string
	FirstName    string
	LastName     string
	Role         string
	Password     string
	AuthProvider string
	Inactive     bool
}

type CreateUserRecord struct {
	Email          string
	FirstName      string
	LastName       string
	Role           string
	CredentialHash string
	AuthProvider   string
	IsActive       bool
}
