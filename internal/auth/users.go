package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"akili/pkg/models"
)

var (
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidPassword = errors.New("password must be 8-72 chars")
	ErrInvalidRole     = errors.New("role must be one of: super_admin, editor, author")
	ErrEmailTaken      = errors.New("email already exists")
	ErrEmptyUserPatch  = errors.New("no fields to update")
)

// NewAdmin is the input for creating a dashboard account.
type NewAdmin struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	DisplayName string   `json:"displayName"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	Department  string   `json:"department"`
}

// CreateAdmin validates in, hashes the password and stores an active account.
// Role defaults to author and permissions to models.DefaultPermissions;
// display name defaults to the local part of the email.
func CreateAdmin(ctx context.Context, repo *Repo, in NewAdmin, createdBy string) (*models.AdminUser, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if !strings.Contains(email, "@") || len(email) > 255 {
		return nil, ErrInvalidEmail
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = models.RoleAuthor
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	perms := in.Permissions
	if len(perms) == 0 {
		perms = append([]string(nil), models.DefaultPermissions...)
	}

	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	if existing, err := repo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.AdminUser{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  name,
		PasswordHash: string(hash),
		Role:         role,
		Permissions:  perms,
		Department:   strings.TrimSpace(in.Department),
		IsActive:     true,
	}
	// self as creator when bootstrapping
	u.CreatedBy = createdBy
	if u.CreatedBy == "" {
		u.CreatedBy = u.ID
	}

	if err := repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func validatePassword(p string) error {
	if len(p) < 8 || len(p) > 72 {
		return ErrInvalidPassword
	}
	return nil
}

// UserPatch lists the account fields a super admin may change.
type UserPatch struct {
	DisplayName *string   `json:"displayName"`
	Department  *string   `json:"department"`
	Role        *string   `json:"role"`
	Permissions *[]string `json:"permissions"`
	IsActive    *bool     `json:"isActive"`
}

func (p UserPatch) Validate() error {
	if p.DisplayName == nil && p.Department == nil && p.Role == nil && p.Permissions == nil && p.IsActive == nil {
		return ErrEmptyUserPatch
	}
	if p.Role != nil && !models.ValidRole(*p.Role) {
		return ErrInvalidRole
	}
	return nil
}
