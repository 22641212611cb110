package main

import (
	"fmt"
	"os"

	"go-inventory-api/internal/repository"
	"go-inventory-api/internal/service"
	"go-inventory-api/pkg/config"
	"go-inventory-api/pkg/database"
	"go-inventory-api/pkg/logger"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	email    string
	password string
)

var rootCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Reset a user's password",
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Env
		cfg := config.Load()
		logger.Setup(cfg.LogLevel, cfg.AppEnv)

		// 2. Setup Database
		db, err := database.Open(database.Options{Driver: cfg.DBDriver, DSN: cfg.DSN()})
		if err != nil {
			return err
		}

		// 3. Reset
		users := service.NewUserService(repository.NewUserRepo(db))
		if err := users.ResetPassword(email, password); err != nil {
			return fmt.Errorf("reset password for %s: %w", email, err)
		}

		log.WithField("email", email).Info("Password has been reset")
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&email, "email", "admin@inventario.com", "account to reset")
	rootCmd.Flags().StringVar(&password, "password", "", "new password (min 6 characters)")
	_ = rootCmd.MarkFlagRequired("password")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
