package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.uber.org/fx"

	httpadapter "agendaapi/src/adapters/http"
	"agendaapi/src/helper/env"
	"agendaapi/src/helper/urls"
	"agendaapi/src/infra/kafka"
	"agendaapi/src/infra/postgres"
	"agendaapi/src/infra/redis"
	"agendaapi/src/repositories"
	"agendaapi/src/serializers"
	"agendaapi/src/services/agenda"
	"agendaapi/src/services/events"
)

func main() {
	log.SetOutput(os.Stdout)
	log.Println("Starting agenda API with Uber Fx...")

	app := fx.New(
		// Providers
		fx.Provide(
			newLogger,
			newReadWriteClient,
			newRedisClient,
			newKafkaClient,
			newItemQueryRepository,
			newCachedItemQueryRepository,
			newItemWriteRepository,
			newSpeakerWriteRepository,
			newEventPublisher,
			newAgendaService,
			newURLRegistry,
			newItemSerializer,
			newServer,
		),

		// Invocations
		fx.Invoke(ensureSchema, registerServerHooks),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	<-app.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
	}
}

func newLogger() *slog.Logger {
	logLevel := env.GetString("LOG_LEVEL", "info")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// newReadWriteClient: sem DB_READ_HOST as leituras vão para o mesmo host da escrita.
func newReadWriteClient() (*postgres.ReadWriteClient, error) {
	return postgres.NewReadWriteClient(postgres.DatabaseConfig{
		WriteHost:      env.MustGetString("DB_WRITE_HOST"),
		WritePort:      env.GetString("DB_WRITE_PORT", "5432"),
		ReadHost:       env.GetString("DB_READ_HOST"),
		ReadPort:       env.GetString("DB_READ_PORT"),
		Name:           env.MustGetString("DB_NAME"),
		User:           env.MustGetString("DB_USER"),
		Password:       env.MustGetString("DB_PASSWORD"),
		MaxConnections: env.GetInt("DB_MAX_POOL_CONNECTIONS", 25),
	})
}

// newRedisClient devolve nil quando REDIS_HOSTS não está definido; o cache fica desligado.
func newRedisClient(logger *slog.Logger) *redis.RedisClient {
	redisHosts := env.GetString("REDIS_HOSTS")
	if redisHosts == "" {
		logger.Warn("REDIS_HOSTS not set, running without cache")
		return nil
	}

	redisPoolSize := env.GetInt("REDIS_POOL_SIZE", 50)
	redisDefaultTTL := env.GetDuration("REDIS_DEFAULT_TTL", 120*time.Second)

	return redis.NewRedisClient(redisHosts, redisPoolSize, redisDefaultTTL)
}

// newKafkaClient devolve nil quando KAFKA_BROKERS não está definido; os eventos não são publicados.
func newKafkaClient(logger *slog.Logger) (*kafka.KafkaClient, error) {
	brokers := env.GetString("KAFKA_BROKERS")
	if brokers == "" {
		logger.Warn("KAFKA_BROKERS not set, agenda events will not be published")
		return nil, nil
	}

	return kafka.NewKafkaClient(brokers, "", env.GetInt("KAFKA_BATCH_SIZE", 100))
}

func newItemQueryRepository(readWriteClient *postgres.ReadWriteClient) *repositories.ItemQueryRepository {
	return repositories.NewItemQueryRepository(readWriteClient.GetReadPool())
}

func newCachedItemQueryRepository(
	itemQueryRepository *repositories.ItemQueryRepository,
	redisClient *redis.RedisClient,
) *repositories.CachedItemQueryRepository {
	return repositories.NewCachedItemQueryRepository(itemQueryRepository, redisClient)
}

func newItemWriteRepository(
	readWriteClient *postgres.ReadWriteClient,
	cachedItemQueryRepository *repositories.CachedItemQueryRepository,
) *repositories.ItemWriteRepository {
	return repositories.NewItemWriteRepository(readWriteClient.GetWritePool(), cachedItemQueryRepository)
}

func newSpeakerWriteRepository(
	readWriteClient *postgres.ReadWriteClient,
	cachedItemQueryRepository *repositories.CachedItemQueryRepository,
) *repositories.SpeakerWriteRepository {
	return repositories.NewSpeakerWriteRepository(readWriteClient.GetWritePool(), cachedItemQueryRepository)
}

func newEventPublisher(logger *slog.Logger, kafkaClient *kafka.KafkaClient) agenda.EventPublisher {
	if kafkaClient == nil {
		return nil
	}

	topic := env.GetString("KAFKA_AGENDA_EVENTS_TOPIC", "agenda-events")
	return events.NewDomainEventPublisher(logger, kafkaClient, topic)
}

func newAgendaService(
	logger *slog.Logger,
	readWriteClient *postgres.ReadWriteClient,
	cachedItemQueryRepository *repositories.CachedItemQueryRepository,
	itemWriteRepository *repositories.ItemWriteRepository,
	speakerWriteRepository *repositories.SpeakerWriteRepository,
	publisher agenda.EventPublisher,
) *agenda.AgendaService {
	// as regras de escrita leem do primário, sem cache
	primary := repositories.NewItemQueryRepository(readWriteClient.GetWritePool())

	return agenda.NewAgendaService(logger, cachedItemQueryRepository, primary, itemWriteRepository, speakerWriteRepository, publisher)
}

func newURLRegistry() (*urls.Registry, error) {
	return urls.NewRegistry(httpadapter.DefaultRoutes())
}

func newItemSerializer(registry *urls.Registry) (*serializers.ItemSerializer, error) {
	return serializers.NewItemSerializer(registry, env.GetString("AGENDA_NUMBER_PREFIX"))
}

func newServer(
	logger *slog.Logger,
	registry *urls.Registry,
	agendaService *agenda.AgendaService,
	itemSerializer *serializers.ItemSerializer,
) (*httpadapter.Server, error) {
	addr := env.GetString("SERVER_ADDR", ":8888")
	allowedOrigins := env.GetStringSlice("CORS_ALLOWED_ORIGINS", "*")

	return httpadapter.NewServer(logger, addr, allowedOrigins, registry, agendaService, itemSerializer)
}

func ensureSchema(lc fx.Lifecycle, logger *slog.Logger, readWriteClient *postgres.ReadWriteClient) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := readWriteClient.Ping(ctx); err != nil {
				return err
			}
			if !env.GetBool("DB_ENSURE_SCHEMA", true) {
				return nil
			}
			logger.Info("Ensuring agenda schema")
			return postgres.EnsureSchema(ctx, readWriteClient.GetWritePool())
		},
	})
}

// registerServerHooks registers lifecycle hooks for the HTTP server
func registerServerHooks(
	lc fx.Lifecycle,
	logger *slog.Logger,
	srv *httpadapter.Server,
	readWriteClient *postgres.ReadWriteClient,
	redisClient *redis.RedisClient,
	kafkaClient *kafka.KafkaClient,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("Server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Server forced to shutdown", "error", err)
				return err
			}

			if kafkaClient != nil {
				if err := kafkaClient.Close(); err != nil {
					logger.Error("Failed to close Kafka client", "error", err)
				}
			}
			if redisClient != nil {
				if err := redisClient.Close(); err != nil {
					logger.Error("Failed to close Redis client", "error", err)
				}
			}
			readWriteClient.Close()

			logger.Info("Server exited gracefully")
			return nil
		},
	})
}
