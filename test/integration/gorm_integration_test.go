package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"cara-compliance-be/internal/repository/unitofwork"
	"cara-compliance-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.KnowledgeChunkRepository())
	assert.NotNil(t, uow.ChatSessionRepository())

	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check Knowledge Chunk Repository", func(t *testing.T) {
		count, err := uow.KnowledgeChunkRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Knowledge chunk count: %d", count)
	})

	t.Run("Check Workflow State Repository", func(t *testing.T) {
		states, err := uow.WorkflowStateRepository().FindActiveBySession(context.Background(), uuid.Nil)
		assert.NoError(t, err)
		t.Logf("Workflow states for zero session: %d", len(states))
	})
}
