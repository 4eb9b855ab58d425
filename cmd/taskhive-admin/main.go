package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/taskhive-io/taskhive-ce/internal/config"
	"github.com/taskhive-io/taskhive-ce/internal/database"
	"github.com/taskhive-io/taskhive-ce/internal/models"
	"github.com/taskhive-io/taskhive-ce/internal/repository"
	"github.com/taskhive-io/taskhive-ce/internal/service"
)

var (
	version = "dev"
	commit  = "none"
)

var rootCmd = &cobra.Command{
	Use:     "taskhive-admin",
	Short:   "TaskHive administration tool",
	Version: fmt.Sprintf("%s (commit: %s)", version, commit),
}

var (
	usernameFlag string
	emailFlag    string
	passwordFlag string
	fullNameFlag string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create the initial admin user",
	Long: `Create an admin user directly in the database.

Intended for bootstrapping a fresh installation, before any user exists
that could grant roles through the API.`,
	RunE: runCreateAdmin,
}

var deactivateUserCmd = &cobra.Command{
	Use:   "deactivate-user",
	Short: "Deactivate a user account by username",
	RunE:  runDeactivateUser,
}

func init() {
	createAdminCmd.Flags().StringVar(&usernameFlag, "username", "", "Username for the admin (required)")
	createAdminCmd.Flags().StringVar(&emailFlag, "email", "", "Email for the admin (required)")
	createAdminCmd.Flags().StringVar(&passwordFlag, "password", "", "Password for the admin (required)")
	createAdminCmd.Flags().StringVar(&fullNameFlag, "full-name", "", "Display name")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")

	deactivateUserCmd.Flags().StringVar(&usernameFlag, "username", "", "Username to deactivate (required)")
	_ = deactivateUserCmd.MarkFlagRequired("username")

	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(deactivateUserCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openUserService() (*service.UserService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	users := repository.NewSQLUserRepository(db)
	return service.NewUserService(users), func() { _ = db.Close() }, nil
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	svc, closeDB, err := openUserService()
	if err != nil {
		return err
	}
	defer closeDB()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := svc.Create(ctx, models.CreateUserRequest{
		Username: usernameFlag,
		Email:    emailFlag,
		Password: passwordFlag,
		FullName: fullNameFlag,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Printf("Created admin user %q (id %d)\n", user.Username, user.ID)
	return nil
}

func runDeactivateUser(cmd *cobra.Command, args []string) error {
	svc, closeDB, err := openUserService()
	if err != nil {
		return err
	}
	defer closeDB()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := svc.GetByUsername(ctx, usernameFlag)
	if err != nil {
		return fmt.Errorf("look up %q: %w", usernameFlag, err)
	}

	inactive := false
	admin := &models.User{ID: user.ID, Role: models.RoleAdmin}
	if _, err := svc.Update(ctx, admin, user.ID, models.UserUpdate{IsActive: &inactive}); err != nil {
		return fmt.Errorf("deactivate %q: %w", usernameFlag, err)
	}

	fmt.Printf("Deactivated user %q (id %d)\n", user.Username, user.ID)
	return nil
}
