package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"testing"
	"time"

	"inventory-api/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	_, err = testDB.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			public_id UUID UNIQUE NOT NULL,
			username VARCHAR(100) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return dbContainer.Terminate, err
	}

	_, err = testDB.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			type VARCHAR(100) NOT NULL,
			sku VARCHAR(100) UNIQUE NOT NULL,
			image_url VARCHAR(500) NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL CHECK (quantity >= 0),
			price DECIMAL(10, 2) NOT NULL CHECK (price >= 0),
			added_by UUID NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			CONSTRAINT fk_products_added_by FOREIGN KEY (added_by) REFERENCES users(public_id)
		)
	`)
	if err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

func TestProperty_StoredCredentialsAreHashed(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("passwords are stored as bcrypt hashes, never plaintext", prop.ForAll(
		func(username string, password string) bool {
			_, _ = testDB.Exec("DELETE FROM users WHERE username = $1", username)

			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				t.Logf("Failed to hash password: %v", err)
				return false
			}

			user := &domain.User{
				ID:           uuid.New(),
				PublicID:     uuid.New(),
				Username:     username,
				PasswordHash: string(hashedPassword),
				CreatedAt:    time.Now(),
			}

			if err := repo.Create(ctx, user); err != nil {
				t.Logf("Failed to create user: %v", err)
				return false
			}

			retrieved, err := repo.FindByUsername(ctx, username)
			if err != nil {
				t.Logf("Failed to find user: %v", err)
				return false
			}

			if retrieved.PasswordHash == password {
				t.Logf("Password was stored as plaintext!")
				return false
			}

			if err := bcrypt.CompareHashAndPassword([]byte(retrieved.PasswordHash), []byte(password)); err != nil {
				t.Logf("Stored password is not a valid bcrypt hash: %v", err)
				return false
			}

			_, _ = testDB.Exec("DELETE FROM users WHERE username = $1", username)

			return true
		},
		gen.RegexMatch(`[a-z][a-z0-9_]{4,20}`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCreateDuplicateUsername(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	username := "dup_" + uuid.NewString()[:8]
	defer testDB.Exec("DELETE FROM users WHERE username = $1", username)

	first := &domain.User{
		ID:           uuid.New(),
		PublicID:     uuid.New(),
		Username:     username,
		PasswordHash: "hash-one",
		CreatedAt:    time.Now(),
	}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("First create failed: %v", err)
	}

	second := &domain.User{
		ID:           uuid.New(),
		PublicID:     uuid.New(),
		Username:     username,
		PasswordHash: "hash-two",
		CreatedAt:    time.Now(),
	}
	err := repo.Create(ctx, second)
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("Expected ErrUserAlreadyExists from the unique index, got %v", err)
	}

	// The first record is untouched
	retrieved, err := repo.FindByUsername(ctx, username)
	if err != nil {
		t.Fatalf("Failed to find user: %v", err)
	}
	if retrieved.ID != first.ID || retrieved.PasswordHash != "hash-one" {
		t.Errorf("Existing record was modified by the rejected insert")
	}
}

func TestFindByPublicID(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	username := "pid_" + uuid.NewString()[:8]
	defer testDB.Exec("DELETE FROM users WHERE username = $1", username)

	user := &domain.User{
		ID:           uuid.New(),
		PublicID:     uuid.New(),
		Username:     username,
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	retrieved, err := repo.FindByPublicID(ctx, user.PublicID)
	if err != nil {
		t.Fatalf("Failed to find user by public ID: %v", err)
	}
	if retrieved.Username != username {
		t.Errorf("Expected username %q, got %q", username, retrieved.Username)
	}

	_, err = repo.FindByPublicID(ctx, uuid.New())
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound for unknown public ID, got %v", err)
	}
}
