package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"akili/internal/auth"
	"akili/pkg/models"
)

var newAdmin auth.NewAdmin

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage dashboard accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a dashboard account (use --role super_admin to bootstrap)",
	Args:  cobra.NoArgs,
	RunE:  runAdminCreate,
}

func init() {
	f := adminCreateCmd.Flags()
	f.StringVar(&newAdmin.Email, "email", "", "login email (required)")
	f.StringVar(&newAdmin.Password, "password", "", "password, 8-72 chars (required)")
	f.StringVar(&newAdmin.DisplayName, "name", "", "display name")
	f.StringVar(&newAdmin.Role, "role", models.RoleAuthor, "super_admin, editor or author")
	f.StringSliceVar(&newAdmin.Permissions, "perm", nil, "permission to grant (repeatable)")
	f.StringVar(&newAdmin.Department, "department", "", "department")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(adminCreateCmd)
}

func runAdminCreate(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	u, err := auth.CreateAdmin(cmd.Context(), auth.NewRepo(e.db), newAdmin, "")
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%s permissions=%s\n",
		u.Email, u.Role, u.ID, strings.Join(u.Permissions, ","))
	return nil
}
