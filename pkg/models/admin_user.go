package models

import (
	"slices"
	"time"
)

// Admin roles.
const (
	RoleSuperAdmin = "super_admin"
	RoleEditor     = "editor"
	RoleAuthor     = "author"
)

// Permission strings stored on AdminUser.Permissions.
const (
	PermReadArticles     = "read_articles"
	PermCreateArticles   = "create_articles"
	PermEditArticles     = "edit_articles"
	PermDeleteArticles   = "delete_articles"
	PermManageCategories = "manage_categories"
	PermManageMedia      = "manage_media"
	PermManageUsers      = "manage_users"
	PermViewAnalytics    = "view_analytics"
	PermSyncNews         = "sync_news"
)

// DefaultPermissions is what a new account gets when none are given.
var DefaultPermissions = []string{PermReadArticles, PermCreateArticles}

type AdminUser struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"displayName"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Permissions  []string   `json:"permissions"`
	Department   string     `json:"department,omitempty"`
	IsActive     bool       `json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	TokenVersion int        `json:"-"`
	CreatedBy    string     `json:"createdBy,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func ValidRole(r string) bool {
	switch r {
	case RoleSuperAdmin, RoleEditor, RoleAuthor:
		return true
	}
	return false
}

// Can reports whether the user holds perm. Super admins hold every permission.
func (u *AdminUser) Can(perm string) bool {
	if u == nil || !u.IsActive {
		return false
	}
	if u.Role == RoleSuperAdmin {
		return true
	}
	return slices.Contains(u.Permissions, perm)
}
