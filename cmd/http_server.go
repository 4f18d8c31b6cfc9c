package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/attendance"
	attendancedb "github.com/frahmantamala/hr-portal/internal/attendance/postgres"
	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/balance"
	balancedb "github.com/frahmantamala/hr-portal/internal/balance/postgres"
	"github.com/frahmantamala/hr-portal/internal/core/events"
	"github.com/frahmantamala/hr-portal/internal/department"
	departmentdb "github.com/frahmantamala/hr-portal/internal/department/postgres"
	"github.com/frahmantamala/hr-portal/internal/employee"
	employeedb "github.com/frahmantamala/hr-portal/internal/employee/postgres"
	"github.com/frahmantamala/hr-portal/internal/leave"
	leavedb "github.com/frahmantamala/hr-portal/internal/leave/postgres"
	"github.com/frahmantamala/hr-portal/internal/message"
	messagedb "github.com/frahmantamala/hr-portal/internal/message/postgres"
	"github.com/frahmantamala/hr-portal/internal/notification"
	notificationdb "github.com/frahmantamala/hr-portal/internal/notification/postgres"
	"github.com/frahmantamala/hr-portal/internal/realtime"
	"github.com/frahmantamala/hr-portal/internal/transport/rest"
	userdb "github.com/frahmantamala/hr-portal/internal/user/postgres"
	"github.com/frahmantamala/hr-portal/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server and the realtime channel`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting http server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		return deps.DB.Close()
	})

	if err := g.Wait(); err != nil {
		deps.Logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	log := deps.Logger
	cfg := deps.Config

	bus := events.NewEventBus(log)
	hub := realtime.NewHub(log)

	userRepo := userdb.NewUserRepository(deps.Gorm)
	employeeRepo := employeedb.NewEmployeeRepository(deps.Gorm)
	departmentRepo := departmentdb.NewDepartmentRepository(deps.Gorm, userRepo)
	balanceRepo := balancedb.NewBalanceRepository(deps.Gorm)
	leaveRepo := leavedb.NewLeaveRepository(deps.Gorm, balanceRepo)
	notificationRepo := notificationdb.NewNotificationRepository(deps.Gorm)
	messageRepo := messagedb.NewMessageRepository(deps.DB)
	attendanceRepo := attendancedb.NewAttendanceRepository(deps.Gorm)

	policy := auth.NewPolicy(departmentRepo, log)

	tokenGen := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)
	authService := auth.NewService(userRepo, tokenGen, log)
	authHandler := auth.NewHandler(authService)

	notificationService := notification.NewService(notificationRepo, bus, log)
	messageService := message.NewService(messageRepo, userRepo, hub, log)

	employeeService := employee.NewService(employeeRepo, policy, log)
	departmentService := department.NewService(departmentRepo, policy, log)
	balanceService := balance.NewService(balanceRepo, policy, log)
	leaveService := leave.NewService(
		leaveRepo, employeeRepo, departmentRepo, userRepo,
		balanceService, policy, notificationService, log)
	attendanceService := attendance.NewService(attendanceRepo, employeeRepo, policy, bus, log)

	origins := strings.Split(cfg.Server.AllowedOrigins, ",")
	realtimeHandler := realtime.NewHandler(hub, authHandler, messageService, origins, log)
	realtime.NewEventHandler(hub, log).RegisterHandlers(bus)

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, rest.Handlers{
		Auth:         authHandler,
		Employee:     employee.NewHandler(employeeService),
		Department:   department.NewHandler(departmentService),
		Leave:        leave.NewHandler(leaveService),
		Balance:      balance.NewHandler(balanceService),
		Notification: notification.NewHandler(notificationService),
		Message:      message.NewHandler(messageService),
		Attendance:   attendance.NewHandler(attendanceService),
		Realtime:     realtimeHandler,
	}, cfg.Server.AllowedOrigins, log)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Env, config.Logging.Level)

	db, gormDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
		DB:     db,
		Gorm:   gormDB,
		Router: chi.NewRouter(),
	}, nil
}

// initDB opens the database once and shares the pool between sqlx and gorm.
// A postgres DSN uses pgx; anything else is treated as a sqlite file for
// local development.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, *gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	if cfg.IsPostgres() {
		dbConn, err := sqlx.Connect("pgx", cfg.Source)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
		}
		dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
		dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
		dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

		gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: dbConn.DB}), gormCfg)
		if err != nil {
			_ = dbConn.Close()
			return nil, nil, fmt.Errorf("failed to open gorm over pgx pool: %w", err)
		}
		return dbConn, gormDB, nil
	}

	gormDB, err := gorm.Open(sqlite.Open(cfg.Source), gormCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, err
	}
	return sqlx.NewDb(sqlDB, "sqlite3"), gormDB, nil
}
