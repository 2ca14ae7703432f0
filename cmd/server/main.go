package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	httpapi "cloudpilot-backend/internal/api/http"
	"cloudpilot-backend/internal/config"
	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/jobs"
	"cloudpilot-backend/internal/logger"
	"cloudpilot-backend/internal/metrics"
	"cloudpilot-backend/internal/provision"
	"cloudpilot-backend/internal/repository"
	"cloudpilot-backend/internal/repository/postgres"
	"cloudpilot-backend/internal/repository/sqlite"
	"cloudpilot-backend/internal/scheduler"
	"cloudpilot-backend/internal/security"
	"cloudpilot-backend/internal/service"
)

// store is the slice of the storage layer main needs, satisfied by both
// backends.
type store struct {
	repository.PackageRequestRepository
	repository.NotificationRepository
	repository.UserRepository
	repository.VMRepository
	repository.ProvisionTaskRepository
	repository.InstalledPackageRepository
}

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Cloud Pilot Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())

	// Initialize storage backend
	var (
		repos   store
		closeDB func() error
	)
	switch cfg.Database.Driver {
	case "sqlite":
		logger.Info("Using SQLite storage", "path", cfg.Database.Path)
		st, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			log.Fatalf("Failed to open SQLite database: %v", err)
		}
		repos = store{
			PackageRequestRepository:   st.PackageRequestRepository,
			NotificationRepository:     st.NotificationRepository,
			UserRepository:             st.UserRepository,
			VMRepository:               st.VMRepository,
			ProvisionTaskRepository:    st.ProvisionTaskRepository,
			InstalledPackageRepository: st.InstalledPackageRepository,
		}
		closeDB = st.Close
	default:
		logger.Info("Using PostgreSQL storage", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := db.Ping(); err != nil {
			log.Fatalf("Failed to ping database: %v", err)
		}
		ps := postgres.NewStore(db)
		repos = store{
			PackageRequestRepository:   ps.PackageRequestRepository,
			NotificationRepository:     ps.NotificationRepository,
			UserRepository:             ps.UserRepository,
			VMRepository:               ps.VMRepository,
			ProvisionTaskRepository:    ps.ProvisionTaskRepository,
			InstalledPackageRepository: ps.InstalledPackageRepository,
		}
		closeDB = db.Close
	}
	defer closeDB()
	logger.Info("Database connection established")

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.Email.APIKey, cfg.Email.FromEmail, cfg.Email.FromName, cfg.Email.Enabled)
	roleRouter := service.NewRoleRouter()
	authSvc := service.NewAuthService(repos.UserRepository, tokenManager, emailSvc)
	approvalSvc := service.NewApprovalService(repos.PackageRequestRepository, repos.NotificationRepository, repos.UserRepository, emailSvc, roleRouter)
	noteSvc := service.NewNotificationService(repos.NotificationRepository, roleRouter)
	vmSvc := service.NewVMService(repos.VMRepository, repos.ProvisionTaskRepository, repos.InstalledPackageRepository, repos.UserRepository)
	metricsClient := metrics.NewClient(
		time.Duration(cfg.Metrics.RequestTimeoutSeconds)*time.Second,
		time.Duration(cfg.Metrics.LookbackSeconds)*time.Second,
		time.Duration(cfg.Metrics.StepSeconds)*time.Second,
	)

	if err := seedUsers(context.Background(), repos.UserRepository); err != nil {
		log.Fatalf("Failed to seed bootstrap users: %v", err)
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the provisioning workers
	worker := provision.NewWorker(
		repos.ProvisionTaskRepository, repos.VMRepository, repos.NotificationRepository,
		cfg.Provision.Workers,
		time.Duration(cfg.Provision.StageSeconds)*time.Second,
		time.Duration(cfg.Provision.PollMilliseconds)*time.Millisecond,
	)
	worker.Start(rootCtx)
	logger.Info("Provisioning workers started", "workers", cfg.Provision.Workers)

	// Start the job scheduler
	jobRunner := jobs.NewJobRunner(repos.PackageRequestRepository, repos.NotificationRepository, repos.ProvisionTaskRepository, cfg)
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()

	// Set up the HTTP server
	router := httpapi.NewRouter(httpapi.RouterDeps{
		AuthService:         authSvc,
		ApprovalService:     approvalSvc,
		NotificationService: noteSvc,
		VMService:           vmSvc,
		MetricsClient:       metricsClient,
		RoleRouter:          roleRouter,
		TokenManager:        tokenManager,
	})
	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	// Wait for a shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-rootCtx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	sched.Stop()
	cancel()
	worker.Wait()
	logger.Info("Shutdown complete")
}

// seedUsers creates the bootstrap accounts on first start so a fresh
// deployment is immediately usable. Existing accounts are left alone.
func seedUsers(ctx context.Context, users repository.UserRepository) error {
	seeds := []struct {
		employeeID string
		name       string
		email      string
		password   string
		role       domain.SessionRole
		team       string
	}{
		{"admin", "Portal Admin", "admin@cloudpilot.local", "admin123", domain.SessionRoleAdmin, "platform"},
		{"head-01", "Dana Whitfield", "dana.whitfield@cloudpilot.local", "head123", domain.SessionRoleHead, "platform"},
		{"leader-01", "Marcus Oyelaran", "marcus.oyelaran@cloudpilot.local", "leader123", domain.SessionRoleLeader, "platform"},
		{"member-01", "Priya Raghunathan", "priya.raghunathan@cloudpilot.local", "member123", domain.SessionRoleMember, "platform"},
	}

	for _, seed := range seeds {
		if _, err := users.GetByEmployeeID(ctx, seed.employeeID); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seed.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user := &domain.User{
			EmployeeID:   seed.employeeID,
			Name:         seed.name,
			Email:        seed.email,
			PasswordHash: string(hash),
			Role:         seed.role,
			Team:         seed.team,
			CreatedOn:    time.Now(),
		}
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		logger.Info("Seeded bootstrap user", "employeeID", seed.employeeID, "role", seed.role)
	}
	return nil
}
