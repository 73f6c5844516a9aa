package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "go-helpdesk/internal/common/api"
	"go-helpdesk/internal/common/response"
	"go-helpdesk/internal/config"
	"go-helpdesk/internal/database"
	"go-helpdesk/internal/features/admin"
	"go-helpdesk/internal/features/auth"
	"go-helpdesk/internal/features/category"
	"go-helpdesk/internal/features/maintenance"
	"go-helpdesk/internal/features/notification"
	"go-helpdesk/internal/features/servicerequest"
	"go-helpdesk/internal/features/system"
	"go-helpdesk/internal/features/ticket"
	"go-helpdesk/internal/features/upload"
	"go-helpdesk/internal/features/user"
	"go-helpdesk/internal/logger"
	"go-helpdesk/internal/middleware"
	"go-helpdesk/internal/repository"
	"go-helpdesk/pkg/apperr"
	"go-helpdesk/pkg/utils"

	_ "go-helpdesk/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				err = &apperr.Error{
					Code:       "HTTP_ERROR",
					Message:    e.Message,
					HTTPStatus: e.Code,
				}
			}
			return response.Error(c, err)
		},
	})

	app.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret, cfg.TokenTTLHours)
			go func() {
				if err := app.Listen(fmt.Sprintf(":%s", cfg.Port)); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(
	lc fx.Lifecycle,
	userRepo user.UserRepository,
	categoryRepo category.CategoryRepository,
	ticketRepo ticket.TicketRepository,
	requestRepo servicerequest.RequestRepository,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := userRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure user indexes: %v", err)
				}
				if err := categoryRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure category indexes: %v", err)
				}
				if err := ticketRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure ticket indexes: %v", err)
				}
				if err := requestRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure service request indexes: %v", err)
				}
			}()
			return nil
		},
	})
}

// @title           Helpdesk API
// @version         1.0
// @description     IT helpdesk ticketing and service request API.

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Initialize Repository
			repository.NewCounters,
			user.NewUserRepository,
			category.NewCategoryRepository,
			ticket.NewTicketRepository,
			servicerequest.NewRequestRepository,
			notification.NewNotificationRepository,
			upload.NewFileRepository,

			// Initialize Service
			notification.NewHub,
			notification.NewNotificationService,
			user.NewUserService,
			auth.NewAuthService,
			category.NewCategoryService,
			ticket.NewTicketService,
			servicerequest.NewRequestService,
			admin.NewAnalyticsService,
			maintenance.NewAutoCloseService,

			// Interface Adapters to break circular dependencies and satisfy Fx
			func(s user.UserService) middleware.AccountChecker { return s },
			func(h *notification.Hub) user.DeactivationNotifier { return h },

			// Initialize Controller
			auth.NewAuthController,
			category.NewCategoryController,
			ticket.NewTicketController,
			servicerequest.NewRequestController,
			notification.NewNotificationController,
			admin.NewAdminController,
			upload.NewUploadController,

			// Initialize API Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(category.NewCategoryApi),
			AsRoute(ticket.NewTicketApi),
			AsRoute(servicerequest.NewRequestApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(admin.NewAdminApi),
			AsRoute(upload.NewUploadApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, autoClose maintenance.AutoCloseService) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return autoClose.InitializeScheduler(ctx)
					},
					OnStop: func(ctx context.Context) error {
						return autoClose.StopScheduler()
					},
				})
			},
			InitializeIndexes,
		),
	)

	app.Run()
}
