package containers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	defaultImage = "postgres:16.3-alpine"
	dbName       = "fantasy_predictions"
	dbUser       = "predictor"
	dbPassword   = "secret"
)

// DBContainer is a throwaway postgres with the predictions schema loaded.
// POSTGRES_TEST_IMAGE overrides the image, e.g. to test another major version.
type DBContainer struct {
	container *postgres.PostgresContainer
}

func NewDBContainer() *DBContainer {
	ctx := context.Background()

	schema, err := schemaPath()
	if err != nil {
		log.Fatal().Err(err).Msg("error locating schema")
	}

	image := defaultImage
	if img := os.Getenv("POSTGRES_TEST_IMAGE"); img != "" {
		image = img
	}

	start := time.Now()
	container, err := postgres.Run(ctx, image,
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		postgres.WithInitScripts(schema),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		log.Fatal().Err(err).Str("image", image).Msg("error starting postgres container")
	}
	log.Debug().Str("image", image).Dur("startup", time.Since(start)).Msg("postgres container ready")

	return &DBContainer{container: container}
}

func (c *DBContainer) Shutdown() {
	if err := c.container.Terminate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("error terminating postgres container")
	}
}

func (c *DBContainer) ConnectionString() string {
	// the container has no TLS
	connStr, err := c.container.ConnectionString(context.Background(), "sslmode=disable")
	if err != nil {
		log.Fatal().Err(err).Msg("error getting connection string")
	}
	return connStr
}

// schemaPath finds schema/schema.sql next to go.mod, walking up from the
// working directory so tests at any package depth share the same file.
func schemaPath() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return findSchema(dir)
}

func findSchema(dir string) (string, error) {
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			path := filepath.Join(dir, "schema", "schema.sql")
			if _, err := os.Stat(path); err != nil {
				return "", err
			}
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found above the working directory")
		}
		dir = parent
	}
}
