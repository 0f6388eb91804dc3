package deps

import (
	"context"
	"passreset/internal/config"
	"passreset/internal/core/domain/account"
	c "passreset/internal/core/domain/common"
	dl "passreset/internal/core/domain/logging"
	dbaccount "passreset/internal/db/account"
	"passreset/internal/db/migrations"
	"passreset/internal/implementations/email"
	"passreset/internal/implementations/logging"
	"passreset/internal/implementations/notifier"
	passwordhasher "passreset/internal/implementations/password_hasher"
	resettoken "passreset/internal/implementations/reset_token"
	"passreset/internal/rabbitmq"
	passwordresetnotification "passreset/internal/rabbitmq/publishers/password_reset_notification"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
)

type Deps struct {
	Config    *config.Config
	AwsConfig aws.Config
	Logger    dl.Logger

	DB       *pgxpool.Pool
	Redis    *redis.Client
	Rabbitmq *rabbitmq.Connection

	Now c.NowFunc

	AccountRepository   account.Repository
	PasswordHasher      account.PasswordHasher
	ResetTokenGenerator account.ResetTokenGenerator
	ResetTokenHasher    account.ResetTokenHasher

	// EmailNotifier sends the email synchronously, ResetNotifier is
	// what the request service uses and never blocks on delivery.
	EmailNotifier *email.Notifier
	ResetNotifier account.ResetNotifier
}

// InitDeps builds everything the HTTP server needs.
func InitDeps() (*Deps, func()) {
	deps := newDeps()
	closeFuncs := []func(){deps.initLogger()}

	closeFuncs = append(closeFuncs, deps.initAccountStore())
	deps.initEmailNotifier()
	closeFuncs = append(closeFuncs, deps.initResetNotifier()...)

	return deps, closer(closeFuncs)
}

// InitStoreDeps builds the account store only.
func InitStoreDeps() (*Deps, func()) {
	deps := newDeps()
	closeFuncs := []func(){deps.initLogger()}
	closeFuncs = append(closeFuncs, deps.initAccountStore())
	return deps, closer(closeFuncs)
}

// InitMailerDeps builds the RabbitMQ connection and the email notifier.
func InitMailerDeps() (*Deps, func()) {
	deps := newDeps()
	closeFuncs := []func(){deps.initLogger()}
	closeFuncs = append(closeFuncs, deps.initRabbitmqConnection())
	deps.initEmailNotifier()
	return deps, closer(closeFuncs)
}

func newDeps() *Deps {
	deps := &Deps{Now: c.UTCNow}
	deps.initConfig()
	return deps
}

// closer runs close funcs in reverse order of initialization, so the
// notifier is drained before the connections it uses are closed.
func closer(closeFuncs []func()) func() {
	return func() {
		for i := len(closeFuncs) - 1; i >= 0; i-- {
			closeFuncs[i]()
		}
	}
}

func (deps *Deps) initConfig() {
	config, err := config.Load()
	if err != nil {
		panic(err)
	}
	deps.Config = config
}

func (deps *Deps) initAwsConfig() {
	cfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(deps.Config.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				deps.Config.AwsAccessKey,
				deps.Config.AwsSecretKey,
				"",
			),
		),
		awsConfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(
				retry.AddWithMaxBackoffDelay(retry.NewStandard(), time.Second*5),
				3,
			)
		}),
	)
	if err != nil {
		panic(err)
	}
	deps.AwsConfig = cfg
}

func (deps *Deps) initLogger() func() {
	logger := logging.NewZapLogger()
	deps.Logger = logger
	return func() { logger.Sync() }
}

func (deps *Deps) initAccountStore() func() {
	deps.PasswordHasher = passwordhasher.NewBcrypt(deps.Config.Secret, deps.Config.BcryptHasherCost)
	deps.ResetTokenGenerator = resettoken.NewGenerator()
	deps.ResetTokenHasher = resettoken.NewHMAC(deps.Config.Secret)

	switch deps.Config.StoreKind() {
	case config.StoreRedis:
		closeRedis := deps.initRedisClient()
		deps.AccountRepository = dbaccount.NewRedisRepository(deps.Redis)
		return closeRedis
	default:
		closePgxPool := deps.initPgxPool()
		deps.AccountRepository = dbaccount.NewPgxRepository(deps.DB)
		return closePgxPool
	}
}

func (deps *Deps) initPgxPool() func() {
	if err := migrations.Up(deps.Config.StoreURL); err != nil {
		deps.Logger.Error(context.Background(), "Could not migrate DB.", dl.Entry("err", err))
		panic(err)
	}
	db, err := pgxpool.Connect(context.Background(), deps.Config.StoreURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to DB.", dl.Entry("err", err))
		panic(err)
	}
	deps.DB = db
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down DB connection.")
		db.Close()
		deps.Logger.Info(context.Background(), "DB connection shut down.")
	}
}

func (deps *Deps) initRedisClient() func() {
	redisOpt, err := redis.ParseURL(deps.Config.StoreURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to Redis.", dl.Entry("err", err))
		panic(err)
	}
	redisClient := redis.NewClient(redisOpt)
	deps.Redis = redisClient
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down Redis client.")
		redisClient.Close()
		deps.Logger.Info(context.Background(), "Redis client shut down.")
	}
}

func (deps *Deps) initRabbitmqConnection() func() {
	rabbitmqConnection, err := rabbitmq.Dial(deps.Config.RabbitmqURL, deps.Logger)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to RabbitMQ.", dl.Entry("err", err))
		panic("could not connect to RabbitMQ")
	}
	deps.Rabbitmq = rabbitmqConnection
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down RabbitMQ connection.")
		rabbitmqConnection.Close()
		deps.Logger.Info(context.Background(), "RabbitMQ connection shut down.")
	}
}

func (deps *Deps) initEmailNotifier() {
	var sender email.Sender
	switch deps.Config.EmailSender {
	case config.EmailSenderSES:
		deps.initAwsConfig()
		sender = email.NewSESSender(deps.AwsConfig, deps.Config.EmailFrom)
	default:
		sender = email.NewLogSender(deps.Logger, deps.Config.IsTestMode)
	}
	deps.EmailNotifier = email.NewNotifier(sender, deps.Config.ResetURL)
}

// initResetNotifier puts the async dispatcher in front of either the
// email notifier or the RabbitMQ publisher.
func (deps *Deps) initResetNotifier() []func() {
	closeFuncs := make([]func(), 0, 3)
	var next account.ResetNotifier = deps.EmailNotifier

	if deps.Config.NotificationTransport == config.TransportRabbitmq {
		closeFuncs = append(closeFuncs, deps.initRabbitmqConnection())

		rabbitmqChannel, err := deps.Rabbitmq.Channel()
		if err != nil {
			deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
			panic(err)
		}
		if err := rabbitmqChannel.DeclareQueue(deps.Config.RabbitmqQueue); err != nil {
			deps.Logger.Error(context.Background(), "Could not create RabbitMQ queue.", dl.Entry("err", err))
			panic(err)
		}
		next = passwordresetnotification.NewRabbitMQ(deps.Logger, rabbitmqChannel, deps.Config.RabbitmqQueue, deps.Now)
		closeFuncs = append(closeFuncs, func() {
			deps.Logger.Info(context.Background(), "Shutting down password reset publisher.")
			rabbitmqChannel.Close()
			deps.Logger.Info(context.Background(), "Password reset publisher shut down.")
		})
	}

	async := notifier.NewAsync(deps.Logger, next, notifier.Config{
		Workers:   deps.Config.NotifierWorkers,
		QueueSize: deps.Config.NotifierQueueSize,
		Timeout:   deps.Config.NotifierTimeout,
	})
	deps.ResetNotifier = async
	closeFuncs = append(closeFuncs, func() {
		deps.Logger.Info(context.Background(), "Draining password reset notifications.")
		async.Close()
		deps.Logger.Info(context.Background(), "Password reset notifications drained.")
	})
	return closeFuncs
}
