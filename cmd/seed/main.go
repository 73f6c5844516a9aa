package main

import (
	"context"
	"errors"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"go-helpdesk/internal/config"
	"go-helpdesk/internal/database"
	"go-helpdesk/internal/features/authz"
	"go-helpdesk/internal/features/category"
	"go-helpdesk/internal/features/user"
	"go-helpdesk/internal/logger"
	"go-helpdesk/internal/repository"
	"go-helpdesk/pkg/utils"
)

var defaultCategories = []category.Category{
	{
		Name:          "Hardware",
		Type:          category.CategoryTypeHardware,
		Subcategories: []string{"Laptop", "Desktop", "Printer", "Monitor", "Network Equipment", "Peripherals"},
		IsActive:      true,
	},
	{
		Name:          "Software",
		Type:          category.CategoryTypeSoftware,
		Subcategories: []string{"Operating System", "Office Suite", "Email", "VPN", "Business Applications"},
		IsActive:      true,
	},
}

func seedAdmin(ctx context.Context, userRepo user.UserRepository, log *zap.Logger) error {
	const adminEmail = "admin@helpdesk.local"

	if _, err := userRepo.FindByEmail(ctx, adminEmail); err == nil {
		log.Info("admin user exists, skipping", zap.String("email", adminEmail))
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := utils.HashPassword("ChangeMe123!")
	if err != nil {
		return err
	}
	admin := &user.User{
		Email:        adminEmail,
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         authz.RoleAdmin,
		Department:   "IT",
		IsActive:     true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return err
	}
	log.Info("admin user created", zap.String("email", adminEmail))
	return nil
}

func seedCategories(ctx context.Context, categoryRepo category.CategoryRepository, log *zap.Logger) error {
	for i := range defaultCategories {
		c := defaultCategories[i]
		if _, err := categoryRepo.FindByName(ctx, c.Name); err == nil {
			log.Info("category exists, skipping", zap.String("category", c.Name))
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := categoryRepo.Create(ctx, &c); err != nil {
			return err
		}
		log.Info("category created", zap.String("category", c.Name))
	}
	return nil
}

// Seed bootstraps the admin account and the default category tree. Safe to
// run repeatedly.
func Seed(
	lc fx.Lifecycle,
	userRepo user.UserRepository,
	categoryRepo category.CategoryRepository,
	log *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						log.Error("failed to shutdown", zap.Error(err))
					}
				}()

				seedCtx := context.Background()
				if err := userRepo.EnsureIndexes(seedCtx); err != nil {
					log.Error("user index creation failed", zap.Error(err))
					return
				}
				if err := categoryRepo.EnsureIndexes(seedCtx); err != nil {
					log.Error("category index creation failed", zap.Error(err))
					return
				}
				if err := seedAdmin(seedCtx, userRepo, log); err != nil {
					log.Error("admin seeding failed", zap.Error(err))
					return
				}
				if err := seedCategories(seedCtx, categoryRepo, log); err != nil {
					log.Error("category seeding failed", zap.Error(err))
					return
				}
				log.Info("seeding complete")
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			user.NewUserRepository,
			category.NewCategoryRepository,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
