package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/appointly/appointment-backend/internal/assignment"
	assignmentHttp "github.com/appointly/appointment-backend/internal/assignment/http"
	"github.com/appointly/appointment-backend/internal/auth"
	"github.com/appointly/appointment-backend/internal/availability"
	availabilityHttp "github.com/appointly/appointment-backend/internal/availability/http"
	"github.com/appointly/appointment-backend/internal/booking"
	bookingHttp "github.com/appointly/appointment-backend/internal/booking/http"
	"github.com/appointly/appointment-backend/internal/catalog"
	catalogHttp "github.com/appointly/appointment-backend/internal/catalog/http"
	"github.com/appointly/appointment-backend/internal/cleanup"
	cleanupHttp "github.com/appointly/appointment-backend/internal/cleanup/http"
	"github.com/appointly/appointment-backend/internal/employee"
	employeeHttp "github.com/appointly/appointment-backend/internal/employee/http"
	"github.com/appointly/appointment-backend/internal/reservation"
	reservationHttp "github.com/appointly/appointment-backend/internal/reservation/http"
	"github.com/appointly/appointment-backend/internal/user"
	userHttp "github.com/appointly/appointment-backend/internal/user/http"
)

// RouterDeps collects the services the router wires into handlers.
type RouterDeps struct {
	Logger       *zap.Logger
	UserService  user.Service
	Assigner     assignment.Service
	Catalog      catalog.Manager
	Employees    employee.Service
	Resolver     availability.Resolver
	Reservations reservation.Service
	Bookings     booking.Service
	Cleanup      *cleanup.Worker
	JWTManager   *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (request id, logging, CORS, auth) and registers
// routes for each module under /v1.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(RequestID(), RequestLogger(deps.Logger), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{
		"http://localhost:8081", // Swagger
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
	r.Use(cors.New(config))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(deps.JWTManager)
	// sysAdminMiddleware: Further checks if the authenticated user has System Admin privileges.
	sysAdminMiddleware := RequireSystemAdmin(deps.UserService)

	userHandler := userHttp.NewHandler(deps.UserService, deps.JWTManager)
	catalogHandler := catalogHttp.NewHandler(deps.Catalog)
	employeeHandler := employeeHttp.NewHandler(deps.Employees)
	availabilityHandler := availabilityHttp.NewHandler(deps.Resolver)
	assignmentHandler := assignmentHttp.NewHandler(deps.Assigner)
	reservationHandler := reservationHttp.NewHandler(deps.Reservations)
	bookingHandler := bookingHttp.NewHandler(deps.Bookings)
	cleanupHandler := cleanupHttp.NewHandler(deps.Cleanup, deps.Reservations)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, sysAdminMiddleware)
		catalogHttp.RegisterRoutes(v1, catalogHandler, authMiddleware, sysAdminMiddleware)
		employeeHttp.RegisterRoutes(v1, employeeHandler, authMiddleware, sysAdminMiddleware)
		availabilityHttp.RegisterRoutes(v1, availabilityHandler)
		assignmentHttp.RegisterRoutes(v1, assignmentHandler, authMiddleware)
		reservationHttp.RegisterRoutes(v1, reservationHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		cleanupHttp.RegisterRoutes(v1, cleanupHandler, authMiddleware, sysAdminMiddleware)
	}

	return r
}
