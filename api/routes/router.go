// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventpass/internal/attendance"
	"eventpass/internal/auth"
	"eventpass/internal/events"
	"eventpass/internal/notifications"
	"eventpass/internal/reservations"
	"eventpass/internal/shared/clock"
	"eventpass/internal/shared/config"
	"eventpass/internal/shared/database"
	"eventpass/internal/shared/middleware"
	"eventpass/internal/tickets"
	"eventpass/internal/users"
	"eventpass/pkg/cache"
	"eventpass/pkg/logger"
	"eventpass/pkg/ratelimit"
)

// Router holds all route dependencies
type Router struct {
	config      *config.Config
	db          *database.DB
	log         *logger.Logger
	rateLimiter *ratelimit.RateLimiter

	guard        *middleware.Guard
	publisher    notifications.Publisher
	eventService events.Service
	eventRepo    events.Repository
	ledger       *events.Ledger
	registry     *tickets.Registry

	reservationRepo    reservations.Repository
	reservationService reservations.Service
	reconciler         *reservations.Reconciler
}

// NewRouter creates a new router instance. rateLimiter may be nil.
func NewRouter(cfg *config.Config, db *database.DB, rateLimiter *ratelimit.RateLimiter, log *logger.Logger) *Router {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Router{
		config:      cfg,
		db:          db,
		log:         log,
		rateLimiter: rateLimiter,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	r.setupAuth()
	r.setupPublisher()

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Order matters: reservations need the event service and registry
		r.setupEventRoutes(api)
		r.setupReservationRoutes(api)
		r.setupAttendanceRoutes(api)
		r.setupUserRoutes(api)
	}
}

// Reconciler is nil until SetupRoutes ran
func (r *Router) Reconciler() *reservations.Reconciler {
	return r.reconciler
}

// Close releases the lifecycle publisher
func (r *Router) Close() error {
	if r.publisher == nil {
		return nil
	}
	return r.publisher.Close()
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "eventpass-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "eventpass-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (r *Router) setupAuth() {
	verifier := auth.NewJWTVerifier(r.config.JWT.Secret, r.config.JWT.Issuer)
	permissions := auth.NewPermissionStore(r.db.GetPostgreSQL())
	r.guard = middleware.NewGuard(verifier, permissions, r.log)
}

// setupPublisher falls back to a no-op publisher when Kafka is off or unreachable
func (r *Router) setupPublisher() {
	r.publisher = notifications.NoopPublisher{}
	if !r.config.Kafka.Enabled {
		r.log.Info("Kafka disabled, lifecycle events will not be published")
		return
	}

	kafkaConfig := notifications.DefaultKafkaProducerConfig()
	kafkaConfig.Brokers = r.config.Kafka.Brokers
	kafkaConfig.Topic = r.config.Kafka.Topic
	kafkaConfig.ClientID = r.config.Kafka.ClientID
	kafkaConfig.RetryMax = r.config.Kafka.RetryMax

	publisher, err := notifications.NewKafkaPublisher(kafkaConfig, r.log)
	if err != nil {
		r.log.Error("Failed to create Kafka publisher, continuing without lifecycle events", "error", err)
		return
	}
	r.publisher = publisher
}

// setupEventRoutes configures event browsing and the ticket type catalog
func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	pg := r.db.GetPostgreSQL()

	r.eventRepo = events.NewRepository(pg)
	r.ledger = events.NewLedger(r.eventRepo, r.log)

	ticketRepo := tickets.NewRepository(pg)
	r.registry = tickets.NewRegistry(ticketRepo, r.eventRepo, r.config.Reservation.IDAttempts)

	r.eventService = events.NewService(r.eventRepo, r.registry, r.log)
	r.eventService.SetCacheService(cache.NewService(r.db.GetRedisClient(), r.log))

	events.SetupEventRoutes(rg, events.NewController(r.eventService))
	tickets.SetupTicketRoutes(rg, tickets.NewController(r.registry))
}

// setupReservationRoutes configures the reservation lifecycle and reconciler
func (r *Router) setupReservationRoutes(rg *gin.RouterGroup) {
	r.reservationRepo = reservations.NewRepository(r.db.GetPostgreSQL())
	r.reservationService = reservations.NewService(
		r.reservationRepo,
		r.eventRepo,
		r.ledger,
		r.registry,
		clock.NewSystem(),
		r.log,
		r.config.Reservation.IDAttempts,
	)
	r.reservationService.SetPublisher(r.publisher)
	r.reservationService.SetEventCache(r.eventService)

	if r.config.Reservation.ReconcileEnabled {
		r.reconciler = reservations.NewReconciler(
			r.eventRepo,
			r.reservationRepo,
			r.ledger,
			r.publisher,
			&reservations.ReconcilerConfig{Interval: r.config.Reservation.ReconcileInterval},
			r.log,
		)
	}

	controller := reservations.NewController(r.reservationService, r.log)
	reservations.SetupReservationRoutes(rg, controller, r.guard, r.limit(ratelimit.RateLimitTypeReservation))
}

// setupAttendanceRoutes configures check-in/out, lookups and wristbands
func (r *Router) setupAttendanceRoutes(rg *gin.RouterGroup) {
	service := attendance.NewService(
		attendance.NewRepository(r.db.GetPostgreSQL()),
		attendance.NewRedisGuestCounter(r.db.GetRedisClient()),
		r.registry,
		r.reservationService,
		r.config.Attendance.CheckEligibilityOnExit,
		r.log,
	)

	controller := attendance.NewController(service, r.log)
	attendance.SetupAttendanceRoutes(rg, controller, r.guard, r.limit(ratelimit.RateLimitTypeTrack))
}

func (r *Router) setupUserRoutes(rg *gin.RouterGroup) {
	userService := users.NewService(users.NewRepository(r.db.GetPostgreSQL()), r.log)
	users.SetupUserRoutes(rg, users.NewController(userService), r.guard)

	permissions := auth.NewPermissionStore(r.db.GetPostgreSQL())
	auth.SetupAuthRoutes(rg, auth.NewController(permissions), r.guard)
}

func (r *Router) limit(limitType ratelimit.RateLimitType) gin.HandlerFunc {
	if r.rateLimiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return ratelimit.Middleware(r.rateLimiter, limitType, r.log)
}
