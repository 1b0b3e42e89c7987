package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"go-timeclock/config"
	"go-timeclock/internal/repository"
	"go-timeclock/pkg/database"
	"go-timeclock/pkg/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	app := &cli.App{
		Name:  "reset-password",
		Usage: "set a new password for an account and end its session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Usage: "account email", Required: true},
			&cli.StringFlag{Name: "password", Usage: "new password (min 6 characters)", Required: true},
		},
		Action: resetPassword,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func resetPassword(c *cli.Context) error {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	email, password := c.String("email"), c.String("password")
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	zlog, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return err
	}
	defer zlog.Sync()

	// 2. Setup Database
	db, err := database.ConnectDB(cfg, zlog)
	if err != nil {
		return err
	}
	userRepo := repository.NewUserRepo(db)

	// 3. Find user
	user, err := userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %s not found", email)
		}
		return err
	}

	// 4. Hash new password and invalidate the current session
	if err := user.SetPassword(password); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.TokenVersion = uuid.New().String()
	user.Audit("system")

	// 5. Update
	if err := userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	zlog.Info("password reset", zap.String("email", email))
	return nil
}
