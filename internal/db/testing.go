package db

import (
	"context"
	"fmt"
	"os"
	"passreset/internal/db/migrations"

	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	TestPostgresqlURLEnv = "TEST_POSTGRESQL_URL"
	TestRedisURLEnv      = "TEST_REDIS_URL"
)

func CreateTestPool() *pgxpool.Pool {
	connString := os.Getenv(TestPostgresqlURLEnv)
	if connString == "" {
		panic(TestPostgresqlURLEnv + " must be set.")
	}
	if err := migrations.Up(connString); err != nil {
		panic(fmt.Sprintf("Could not apply DB migrations %v.", err))
	}

	ctx := context.Background()
	pool, err := pgxpool.Connect(ctx, connString)
	if err != nil {
		panic("Could not connect to the database.")
	}

	return pool
}

func TruncateTables(pool *pgxpool.Pool) {
	_, err := pool.Exec(context.Background(), "TRUNCATE account")
	if err != nil {
		panic("Could not truncate DB tables.")
	}
}

func CreateTestRedisClient() *redis.Client {
	url := os.Getenv(TestRedisURLEnv)
	if url == "" {
		panic(TestRedisURLEnv + " must be set.")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		panic(fmt.Sprintf("Could not parse Redis URL %v.", err))
	}
	return redis.NewClient(opt)
}

func FlushRedis(client *redis.Client) {
	if err := client.FlushDB(context.Background()).Err(); err != nil {
		panic("Could not flush Redis DB.")
	}
}
