// Command migrate applies the Postgres schema and can seed the first admin
// account, which cannot be created through /api/auth/register.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/construmarket/internal/config"
	"github.com/MikeMC777/construmarket/internal/db"
	"github.com/MikeMC777/construmarket/internal/logging"
	"github.com/MikeMC777/construmarket/internal/user"
)

func main() {
	cfg := config.Load()

	dsn := flag.String("dsn", cfg.PostgresDSN, "postgres connection string")
	email := flag.String("admin-email", "", "seed an admin account with this email")
	password := flag.String("admin-password", os.Getenv("ADMIN_PASSWORD"), "password for the seeded admin")
	first := flag.String("admin-first-name", "Platform", "admin first name")
	last := flag.String("admin-last-name", "Admin", "admin last name")
	phone := flag.String("admin-phone", "9000000000", "admin phone")
	flag.Parse()

	log := logging.New(cfg.LogLevel)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := db.Connect(ctx, *dsn, 10, 2*time.Second, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	log.Info("[migrate] schema applied")

	if *email == "" {
		return
	}
	if len(*password) < 8 {
		log.Fatal("-admin-password must be at least 8 characters")
	}
	users := user.NewService(user.NewPGRepo(pool), log)
	admin := &user.User{
		FirstName: *first,
		LastName:  *last,
		Email:     *email,
		Phone:     *phone,
		Role:      user.RoleAdmin,
		Address:   user.Address{Country: "India"},
	}
	switch err := users.Provision(ctx, admin, *password); {
	case errors.Is(err, user.ErrAlreadyExist):
		log.WithField("email", admin.Email).Info("[migrate] admin already exists")
	case err != nil:
		log.WithError(err).Fatal("failed to seed admin")
	default:
		log.WithFields(logrus.Fields{"email": admin.Email, "user_id": admin.ID}).Info("[migrate] admin seeded")
	}
}
