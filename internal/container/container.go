package container

import (
	"log/slog"
	"time"

	"github.com/campus-hub/eventhub/internal/helpers"
	"github.com/campus-hub/eventhub/internal/models"
	"github.com/campus-hub/eventhub/internal/realtime"
	"github.com/campus-hub/eventhub/internal/services"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// Options are the settings the container needs beyond its clients.
type Options struct {
	MongoDBName    string
	JWTSecret      string
	TokenTTL       time.Duration
	AdminUsername  string
	AdminPassword  string
	Location       *time.Location
	NotifySchedule string
	SecureCookies  bool
	AllowOrigins   []string
}

// Container holds all application dependencies
type Container struct {
	Logger     *slog.Logger
	Cloudinary *cloudinary.Cloudinary
	// Database clients
	MongoDBClient *mongo.Client
	RedisClient   *redis.Client

	Options   Options
	Gateway   *models.Gateway
	Hub       *realtime.Hub
	Redis     *realtime.RedisPublisher
	Tokens    *helpers.TokenIssuer
	Scheduler *services.NotificationScheduler

	UserService         *services.UserService
	EventService        *services.EventService
	BookingService      *services.BookingService
	VolunteerService    *services.VolunteerService
	MediaService        *services.MediaService
	MessageService      *services.MessageService
	FeedbackService     *services.FeedbackService
	NotificationService *services.NotificationService
	AdminService        *services.AdminService
}

// NewContainer creates a new dependency injection container. Every client is
// optional: without MongoDB state lives in memory, without Redis push events
// stay in process and without Cloudinary media uploads are refused.
func NewContainer(
	logger *slog.Logger,
	cld *cloudinary.Cloudinary,
	mongoDBClient *mongo.Client,
	redisClient *redis.Client,
	opts Options,
) (*Container, error) {
	tokens, err := helpers.NewTokenIssuer(opts.JWTSecret, opts.TokenTTL)
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	var store models.AggregateStore
	if mongoDBClient != nil {
		store = models.MongodbNewRepo(mongoDBClient, opts.MongoDBName)
	} else {
		logger.Warn("MongoDB not configured, using in-memory store")
		store = models.NewMemoryStore()
	}
	gateway := models.NewGateway(store, logger)

	hub := realtime.NewHub(logger)
	var publisher services.Publisher = hub
	var redisPub *realtime.RedisPublisher
	if redisClient != nil {
		redisPub = realtime.NewRedisPublisher(redisClient, realtime.DefaultChannel, logger)
		publisher = redisPub
	}

	var storage services.ObjectStorage
	if cld != nil {
		storage = helpers.NewCloudinaryStorage(cld)
	}

	env := services.NewEnv(gateway, publisher, logger, opts.Location)

	return &Container{
		Logger:        logger,
		Cloudinary:    cld,
		MongoDBClient: mongoDBClient,
		RedisClient:   redisClient,
		Options:       opts,
		Gateway:       gateway,
		Hub:           hub,
		Redis:         redisPub,
		Tokens:        tokens,
		Scheduler:     services.NewNotificationScheduler(env, opts.NotifySchedule),

		UserService:         services.NewUserService(env, storage),
		EventService:        services.NewEventService(env, storage),
		BookingService:      services.NewBookingService(env),
		VolunteerService:    services.NewVolunteerService(env),
		MediaService:        services.NewMediaService(env, storage),
		MessageService:      services.NewMessageService(env, storage),
		FeedbackService:     services.NewFeedbackService(env),
		NotificationService: services.NewNotificationService(env),
		AdminService:        services.NewAdminService(env, storage, opts.AdminUsername, opts.AdminPassword),
	}, nil
}
