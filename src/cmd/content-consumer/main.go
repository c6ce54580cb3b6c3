package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"

	"agendaapi/src/adapters/kafka/consumers"
	"agendaapi/src/helper/env"
	"agendaapi/src/infra/kafka"
	"agendaapi/src/infra/postgres"
	"agendaapi/src/infra/redis"
	"agendaapi/src/repositories"
	"agendaapi/src/services/agenda"
	"agendaapi/src/services/events"
)

func main() {
	log.SetOutput(os.Stdout)
	log.Println("Starting content objects consumer with Uber Fx...")

	app := fx.New(
		// Providers
		fx.Provide(
			newLogger,
			newSQLClient,
			newRedisClient,
			newKafkaClient,
			newCachedItemQueryRepository,
			newItemWriteRepository,
			newSpeakerWriteRepository,
			newAgendaService,
			newContentObjectsConsumer,
		),

		// Invocations
		fx.Invoke(startConsumer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start consumer application: %v", err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Shutting down content objects consumer...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
	}

	log.Println("Content objects consumer shutdown complete")
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

// O consumer só escreve: um pool apontando para o primário basta.
func newSQLClient() (*pgxpool.Pool, error) {
	dbHost := env.MustGetString("DB_WRITE_HOST")
	dbPort := env.GetString("DB_WRITE_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	maxConnections := env.GetInt("DB_MAX_POOL_CONNECTIONS", 10)

	return postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, maxConnections)
}

// O redis só é usado para invalidar o cache da API; sem ele nada é invalidado.
func newRedisClient(logger *slog.Logger) *redis.RedisClient {
	redisHosts := env.GetString("REDIS_HOSTS")
	if redisHosts == "" {
		logger.Warn("REDIS_HOSTS not set, API cache will not be invalidated")
		return nil
	}

	redisPoolSize := env.GetInt("REDIS_POOL_SIZE", 10)
	redisDefaultTTL := env.GetDuration("REDIS_DEFAULT_TTL", 120*time.Second)

	return redis.NewRedisClient(redisHosts, redisPoolSize, redisDefaultTTL)
}

func newKafkaClient() (*kafka.KafkaClient, error) {
	brokers := env.MustGetString("KAFKA_BROKERS")
	groupID := env.MustGetString("KAFKA_CONTENT_OBJECTS_CONSUMER_GROUP_ID")
	batchSize := env.GetInt("KAFKA_BATCH_SIZE", 100)

	return kafka.NewKafkaClient(brokers, groupID, batchSize)
}

func newCachedItemQueryRepository(pool *pgxpool.Pool, redisClient *redis.RedisClient) *repositories.CachedItemQueryRepository {
	return repositories.NewCachedItemQueryRepository(repositories.NewItemQueryRepository(pool), redisClient)
}

func newItemWriteRepository(
	pool *pgxpool.Pool,
	cachedItemQueryRepository *repositories.CachedItemQueryRepository,
) *repositories.ItemWriteRepository {
	return repositories.NewItemWriteRepository(pool, cachedItemQueryRepository)
}

func newSpeakerWriteRepository(
	pool *pgxpool.Pool,
	cachedItemQueryRepository *repositories.CachedItemQueryRepository,
) *repositories.SpeakerWriteRepository {
	return repositories.NewSpeakerWriteRepository(pool, cachedItemQueryRepository)
}

func newAgendaService(
	logger *slog.Logger,
	pool *pgxpool.Pool,
	cachedItemQueryRepository *repositories.CachedItemQueryRepository,
	itemWriteRepository *repositories.ItemWriteRepository,
	speakerWriteRepository *repositories.SpeakerWriteRepository,
	kafkaClient *kafka.KafkaClient,
) *agenda.AgendaService {
	topic := env.GetString("KAFKA_AGENDA_EVENTS_TOPIC", "agenda-events")
	publisher := events.NewDomainEventPublisher(logger, kafkaClient, topic)
	primary := repositories.NewItemQueryRepository(pool)

	return agenda.NewAgendaService(logger, cachedItemQueryRepository, primary, itemWriteRepository, speakerWriteRepository, publisher)
}

func newContentObjectsConsumer(logger *slog.Logger, agendaService *agenda.AgendaService) *consumers.ContentObjectsConsumer {
	return consumers.NewContentObjectsConsumer(logger, agendaService)
}

func startConsumer(
	lc fx.Lifecycle,
	logger *slog.Logger,
	pool *pgxpool.Pool,
	kafkaClient *kafka.KafkaClient,
	contentConsumer *consumers.ContentObjectsConsumer,
) {
	// o ctx do OnStart expira junto com a inicialização
	consumerCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if env.GetBool("DB_ENSURE_SCHEMA", true) {
				if err := postgres.EnsureSchema(ctx, pool); err != nil {
					cancel()
					return err
				}
			}

			topic := env.MustGetString("KAFKA_CONTENT_OBJECTS_TOPIC")

			go func() {
				if err := contentConsumer.Start(consumerCtx, kafkaClient, topic); err != nil {
					logger.Error("Consumer failed", "error", err)
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()

			logger.Info("Shutting down Kafka client...")
			if err := kafkaClient.Close(); err != nil {
				logger.Error("Failed to close Kafka client", "error", err)
				return err
			}
			pool.Close()
			logger.Info("Kafka client shut down gracefully")
			return nil
		},
	})
}
