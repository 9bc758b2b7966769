package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/appointly/appointment-backend/internal/api"
	"github.com/appointly/appointment-backend/internal/assignment"
	"github.com/appointly/appointment-backend/internal/auth"
	"github.com/appointly/appointment-backend/internal/availability"
	"github.com/appointly/appointment-backend/internal/booking"
	"github.com/appointly/appointment-backend/internal/calendar"
	"github.com/appointly/appointment-backend/internal/catalog"
	"github.com/appointly/appointment-backend/internal/cleanup"
	"github.com/appointly/appointment-backend/internal/employee"
	"github.com/appointly/appointment-backend/internal/reservation"
	"github.com/appointly/appointment-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	Logger     *zap.Logger
	DBPool     *pgxpool.Pool
	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	GraceHours            int
	ReservationTTLMinutes int
	CleanupCron           string
	StatsCron             string

	CalendarBaseURL string
	CalendarTimeout time.Duration
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router        *gin.Engine
	JWTManager    *auth.JWTManager
	CleanupWorker *cleanup.Worker
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// External calendar: disabled unless a base URL is configured.
	var cal calendar.Calendar = calendar.Disabled{}
	if cfg.CalendarBaseURL != "" {
		cal = calendar.NewClient(cfg.CalendarBaseURL, cfg.CalendarTimeout, cfg.Logger)
	}

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Service Catalog Module
	catalogRepo := catalog.NewPgxRepository(cfg.DBPool)
	catalogManager := catalog.NewManager(catalogRepo)

	// Employee Module
	employeeRepo := employee.NewPgxRepository(cfg.DBPool)
	employeeService := employee.NewService(employeeRepo)

	// Reservation Module
	reservationRepo := reservation.NewPgxRepository(cfg.DBPool)
	reservationService := reservation.NewService(
		reservationRepo,
		time.Duration(cfg.ReservationTTLMinutes)*time.Minute,
		cfg.Logger,
	)

	// Availability Module
	resolver := availability.NewResolver(catalogManager, employeeService, reservationService, cal, cfg.GraceHours, cfg.Logger)

	// Assignment + Booking Modules
	assigner := assignment.NewService(employeeService, reservationService, cal, cfg.Logger)
	bookingService := booking.NewService(assigner, reservationService, cfg.Logger)

	// Cleanup Worker
	cleanupWorker := cleanup.NewWorker(cfg.Logger, reservationService, cfg.CleanupCron, cfg.StatsCron)

	// Router
	router := api.NewRouter(api.RouterDeps{
		Logger:       cfg.Logger,
		UserService:  userService,
		Assigner:     assigner,
		Catalog:      catalogManager,
		Employees:    employeeService,
		Resolver:     resolver,
		Reservations: reservationService,
		Bookings:     bookingService,
		Cleanup:      cleanupWorker,
		JWTManager:   jwtManager,
	})

	return &Container{
		Router:        router,
		JWTManager:    jwtManager,
		CleanupWorker: cleanupWorker,
	}
}
