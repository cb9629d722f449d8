package assignmentrepo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"foodcourt/internal/adapters/out/postgres/assignmentrepo"
	"foodcourt/internal/core/domain/model/dispatch"
	"foodcourt/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// AssignmentRepositoryIntegrationTestSuite verifies the atomic claim
// semantics of the assignment store against a real PostgreSQL container.
type AssignmentRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *assignmentrepo.GormAssignmentRepository
}

func (suite *AssignmentRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&assignmentrepo.AssignmentDTO{}))
}

func (suite *AssignmentRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE assignments").Error)
	suite.repository = assignmentrepo.NewGormAssignmentRepository(suite.db)
}

func (suite *AssignmentRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *AssignmentRepositoryIntegrationTestSuite) newAssignment(orderID kernel.UUID) *dispatch.Assignment {
	assignment, err := dispatch.NewAssignment(
		orderID, kernel.NewUUID(), kernel.NewUUID(), time.Now().UTC().Truncate(time.Microsecond))
	suite.Require().NoError(err)
	return assignment
}

func (suite *AssignmentRepositoryIntegrationTestSuite) TestCreateIfAbsent_FirstClaimWins() {
	ctx := context.Background()
	orderID := kernel.NewUUID()

	created, err := suite.repository.CreateIfAbsent(ctx, suite.newAssignment(orderID))
	suite.Require().NoError(err)
	suite.True(created)

	created, err = suite.repository.CreateIfAbsent(ctx, suite.newAssignment(orderID))
	suite.Require().NoError(err)
	suite.False(created)
}

func (suite *AssignmentRepositoryIntegrationTestSuite) TestCreateIfAbsent_RevokedOrderCanBeReclaimed() {
	ctx := context.Background()
	orderID := kernel.NewUUID()

	first := suite.newAssignment(orderID)
	created, err := suite.repository.CreateIfAbsent(ctx, first)
	suite.Require().NoError(err)
	suite.True(created)

	suite.Require().NoError(first.Revoke())
	suite.Require().NoError(suite.repository.Update(ctx, first))

	second := suite.newAssignment(orderID)
	created, err = suite.repository.CreateIfAbsent(ctx, second)
	suite.Require().NoError(err)
	suite.True(created)

	active, err := suite.repository.GetActiveByOrder(ctx, orderID)
	suite.Require().NoError(err)
	suite.Require().NotNil(active)
	suite.True(active.DriverID().IsEqual(second.DriverID()))
}

func (suite *AssignmentRepositoryIntegrationTestSuite) TestCreateIfAbsent_ConcurrentClaimsHaveOneWinner() {
	ctx := context.Background()
	orderID := kernel.NewUUID()

	const drivers = 16
	var wg sync.WaitGroup
	results := make(chan bool, drivers)

	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := suite.repository.CreateIfAbsent(ctx, suite.newAssignment(orderID))
			suite.NoError(err)
			results <- created
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for created := range results {
		if created {
			winners++
		}
	}
	suite.Equal(1, winners)
}

func (suite *AssignmentRepositoryIntegrationTestSuite) TestGetActiveByOrder_AbsentReadsAsNil() {
	active, err := suite.repository.GetActiveByOrder(context.Background(), kernel.NewUUID())
	suite.Require().NoError(err)
	suite.Nil(active)
}

func (suite *AssignmentRepositoryIntegrationTestSuite) TestGetActiveByDriver_ListsOnlyActive() {
	ctx := context.Background()
	driverID := kernel.NewUUID()

	held, err := dispatch.NewAssignment(kernel.NewUUID(), driverID, kernel.NewUUID(), time.Now())
	suite.Require().NoError(err)
	created, err := suite.repository.CreateIfAbsent(ctx, held)
	suite.Require().NoError(err)
	suite.True(created)

	finished, err := dispatch.NewAssignment(kernel.NewUUID(), driverID, kernel.NewUUID(), time.Now())
	suite.Require().NoError(err)
	created, err = suite.repository.CreateIfAbsent(ctx, finished)
	suite.Require().NoError(err)
	suite.True(created)
	suite.Require().NoError(finished.Complete())
	suite.Require().NoError(suite.repository.Update(ctx, finished))

	active, err := suite.repository.GetActiveByDriver(ctx, driverID)
	suite.Require().NoError(err)
	suite.Require().Len(active, 1)
	suite.True(active[0].OrderID().IsEqual(held.OrderID()))
}

func TestAssignmentRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(AssignmentRepositoryIntegrationTestSuite))
}
