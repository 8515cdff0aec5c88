package cmd

import (
	"errors"
	"log"

	"github.com/ariebrainware/aba-tracker/model"
	"github.com/ariebrainware/aba-tracker/store"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	adminUsername string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	Long: `create-admin creates a login with the admin role. Admin accounts
cannot be self-registered through the API unless ALLOW_ADMIN_SIGNUP is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		user, err := createAdmin(db, adminUsername, adminPassword)
		if err != nil {
			return err
		}
		log.Printf("Created admin %q (id %d)", user.Username, user.ID)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "admin username")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func createAdmin(db *gorm.DB, username, password string) (model.User, error) {
	if username == "" || password == "" {
		return model.User{}, errors.New("username and password are required")
	}
	acc, err := store.CreateAccount(db, store.AccountInput{
		Username: username,
		Password: password,
		Role:     model.RoleAdmin,
	})
	if err != nil {
		return model.User{}, err
	}
	return acc.User, nil
}
