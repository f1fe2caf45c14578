package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaevor/go-nanoid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/snipgo/snip/internal/analytics"
	"github.com/snipgo/snip/internal/auth"
	"github.com/snipgo/snip/internal/handlers"
	"github.com/snipgo/snip/internal/health"
	"github.com/snipgo/snip/internal/messaging"
	"github.com/snipgo/snip/internal/middleware"
	"github.com/snipgo/snip/internal/ratelimit"
	"github.com/snipgo/snip/internal/shortener"
	"github.com/snipgo/snip/internal/store"
	"go.uber.org/zap"
)

// Options holds all service configuration, populated by humacli from flags
// and environment variables.
type Options struct {
	Port          int    `default:"8888"           help:"Port to listen on"                                                    short:"p"`
	BaseURL       string `default:""               help:"Public base URL for short links (default http://localhost:<port>)"`
	CodeLength    int    `default:"8"              help:"Length of generated short codes"                                      short:"c"`
	DatabaseURL   string `default:""               help:"PostgreSQL connection string; in-memory stores when empty"`
	RedisAddr     string `default:""               help:"Redis address; enables the cache, shared rate limits and the click stream" short:"r"`
	CacheTTL      int    `default:"300"            help:"Mapping cache TTL in seconds"`
	JWTSecret     string `default:""               help:"HMAC secret for bearer tokens; the raw token is the owner id when empty"`
	ConsumerGroup string `default:"click-recorder" help:"Redis stream consumer group for click recording"`
	LogFormat     string `default:"console"        help:"Log format: console or json"`
}

func (o *Options) baseURL() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}

// LoggerPackage provides the application logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the Redis client. Only invoked when RedisAddr is set.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{Addr: options.RedisAddr}), nil
	})
}

// PostgresPackage provides the pgx pool. Only invoked when DatabaseURL is set.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)

		return pgxpool.New(context.Background(), options.DatabaseURL)
	})
}

// RepositoryPackage provides the mapping repository and the click store,
// choosing Postgres or in-memory backends and layering the Redis read cache
// over the mapping repository when Redis is configured.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortener.Repository, error) {
		options := do.MustInvoke[*Options](i)

		var repo shortener.Repository
		if options.DatabaseURL != "" {
			repo = store.NewPostgresStore(do.MustInvoke[*pgxpool.Pool](i))
		} else {
			repo = store.NewMemoryStore()
		}

		if options.RedisAddr != "" {
			ttl := time.Duration(options.CacheTTL) * time.Second
			repo = store.NewRedisCacheRepository(repo, do.MustInvoke[*redis.Client](i), ttl)
		}

		return repo, nil
	})

	do.Provide(injector, func(i *do.Injector) (analytics.ClickStore, error) {
		options := do.MustInvoke[*Options](i)

		if options.DatabaseURL != "" {
			return store.NewClicksPostgresStore(do.MustInvoke[*pgxpool.Pool](i)), nil
		}

		return store.NewClicksMemoryStore(), nil
	})

	do.Provide(injector, func(i *do.Injector) (*shortener.Service, error) {
		options := do.MustInvoke[*Options](i)

		generator, err := nanoid.Standard(options.CodeLength)
		if err != nil {
			return nil, err
		}

		return shortener.NewService(
			do.MustInvoke[shortener.Repository](i),
			shortener.CodeGenerator(generator),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*analytics.Recorder, error) {
		return analytics.NewRecorder(
			do.MustInvoke[analytics.ClickStore](i),
			do.MustInvoke[shortener.Repository](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*analytics.Reporter, error) {
		return analytics.NewReporter(
			do.MustInvoke[shortener.Repository](i),
			do.MustInvoke[analytics.ClickStore](i),
		), nil
	})
}

// RateLimitPackage provides the rate limit store and the default limiter.
// The store is shared across instances when Redis is configured.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (ratelimit.Store, error) {
		options := do.MustInvoke[*Options](i)

		if options.RedisAddr != "" {
			return store.NewRateLimitRedisStore(do.MustInvoke[*redis.Client](i)), nil
		}

		return store.NewRateLimitMemoryStore(), nil
	})

	do.Provide(injector, func(i *do.Injector) (ratelimit.Limiter, error) {
		return ratelimit.NewSlidingWindowLimiter(
			do.MustInvoke[ratelimit.Store](i), 300, time.Minute,
		), nil
	})
}

// goChannelPackage provides the shared in-process pub/sub used when no Redis
// is configured. The same instance must serve both publisher and subscriber.
func goChannelPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*gochannel.GoChannel, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		return gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			messaging.NewZapLoggerAdapter(logger),
		), nil
	})
}

// PublisherGroupPackage provides the click event publisher: Redis Streams
// when configured, in-process channels otherwise.
func PublisherGroupPackage(injector *do.Injector) {
	goChannelPackage(injector)

	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		options := do.MustInvoke[*Options](i)

		if options.RedisAddr == "" {
			return messaging.NewPublisherGroup(do.MustInvoke[*gochannel.GoChannel](i)), nil
		}

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: do.MustInvoke[*redis.Client](i)},
			messaging.NewZapLoggerAdapter(do.MustInvoke[*zap.Logger](i)),
		)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.ClickEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.ClickEvent](group.Publisher(), analytics.TopicURLClicked), nil
	})
}

// ConsumerGroupPackage provides the click recorder consumer group.
func ConsumerGroupPackage(injector *do.Injector) {
	goChannelPackage(injector)

	do.Provide(injector, func(i *do.Injector) (message.Subscriber, error) {
		options := do.MustInvoke[*Options](i)

		if options.RedisAddr == "" {
			return do.MustInvoke[*gochannel.GoChannel](i), nil
		}

		return redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        do.MustInvoke[*redis.Client](i),
				ConsumerGroup: options.ConsumerGroup,
			},
			messaging.NewZapLoggerAdapter(do.MustInvoke[*zap.Logger](i)),
		)
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		subscriber := do.MustInvoke[message.Subscriber](i)
		recorder := do.MustInvoke[*analytics.Recorder](i)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(
			subscriber, analytics.TopicURLClicked, recorder.Handle, logger,
		))

		return group, nil
	})
}

// HTTPPackage provides the router and the API with all routes registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (auth.Verifier, error) {
		options := do.MustInvoke[*Options](i)

		if options.JWTSecret == "" {
			return auth.PassthroughVerifier{}, nil
		}

		return auth.NewJWTVerifier(options.JWTSecret), nil
	})

	do.Provide(injector, func(i *do.Injector) (*handlers.URLHandler, error) {
		options := do.MustInvoke[*Options](i)

		return handlers.NewURLHandler(
			do.MustInvoke[*shortener.Service](i),
			do.MustInvoke[*analytics.Reporter](i),
			do.MustInvoke[messaging.Publish[analytics.ClickEvent]](i),
			options.baseURL(),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*health.Handler, error) {
		options := do.MustInvoke[*Options](i)

		var redisChecker, postgresChecker health.Checker

		if options.RedisAddr != "" {
			redisChecker = health.NewRedisChecker(do.MustInvoke[*redis.Client](i))
		}

		if options.DatabaseURL != "" {
			postgresChecker = health.NewPostgresChecker(do.MustInvoke[*pgxpool.Pool](i))
		}

		return health.NewHandler(redisChecker, postgresChecker), nil
	})

	do.Provide(injector, func(i *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)

		api := humachi.New(router, huma.DefaultConfig("Snip URL Shortener", "1.0.0"))

		api.UseMiddleware(
			middleware.RequestMeta(api),
			middleware.Authenticate(api, do.MustInvoke[auth.Verifier](i)),
			middleware.RateLimiter(api,
				do.MustInvoke[ratelimit.Limiter](i),
				do.MustInvoke[ratelimit.Store](i),
				logger,
			),
		)

		handlers.RegisterRoutes(api, do.MustInvoke[*handlers.URLHandler](i))
		health.RegisterRoutes(api, do.MustInvoke[*health.Handler](i))

		return api, nil
	})
}
