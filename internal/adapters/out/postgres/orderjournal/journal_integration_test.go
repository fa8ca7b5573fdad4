package orderjournal_test

import (
	"context"
	"testing"
	"time"

	"harvestlog/internal/adapters/out/postgres/orderjournal"
	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/core/domain/model/order"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type OrderJournalIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	journal   *orderjournal.GormOrderJournal
}

func (suite *OrderJournalIntegrationTestSuite) SetupSuite() {
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

	suite.Require().NoError(orderjournal.Migrate(db))
}

func (suite *OrderJournalIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE order_events, order_snapshots").Error)
	suite.journal = orderjournal.NewGormOrderJournal(suite.db)
}

func (suite *OrderJournalIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderJournalIntegrationTestSuite) TestRecord_UpsertsSnapshotAndAppendsEvents() {
	ctx := context.Background()
	o := suite.createTestOrder()

	suite.Require().NoError(suite.journal.Record(ctx, o, order.Unknown))

	transporter := suite.party("transport-1", kernel.RoleTransport, "Kiran")
	suite.Require().NoError(o.AssignTransporter(transporter, o.CreatedAt().Add(2*time.Second)))
	suite.Require().NoError(suite.journal.Record(ctx, o, order.Created))

	var snapshots []orderjournal.OrderSnapshotDTO
	suite.Require().NoError(suite.db.Find(&snapshots).Error)
	suite.Require().Len(snapshots, 1)
	snapshot := snapshots[0]
	suite.Equal("TRANSPORT_ASSIGNED", snapshot.Status)
	suite.Equal("chat-"+o.ID().String(), snapshot.ChatID)
	suite.Require().NotNil(snapshot.Transporter)
	suite.Equal("Kiran", snapshot.Transporter.Name)
	suite.Equal("Asha", snapshot.Buyer.Name)
	suite.Require().Len(snapshot.Items, 2)
	suite.Equal("Tomatoes", snapshot.Items[0].Name)
	suite.InDelta(1300.0, snapshot.TotalAmount, 1e-9)
	suite.InDelta(180.0, snapshot.DeliveryFee, 1e-9)

	var events []orderjournal.OrderEventDTO
	suite.Require().NoError(suite.db.Order("id").Find(&events).Error)
	suite.Require().Len(events, 2)
	suite.Equal("UNKNOWN", events[0].FromStatus)
	suite.Equal("CREATED", events[0].ToStatus)
	suite.Equal("CREATED", events[1].FromStatus)
	suite.Equal("TRANSPORT_ASSIGNED", events[1].ToStatus)
}

func (suite *OrderJournalIntegrationTestSuite) TestRecord_RejectsInvalidOrder() {
	err := suite.journal.Record(context.Background(), &order.Order{}, order.Unknown)

	suite.Require().ErrorIs(err, order.ErrOrderIsNotConstructed)
}

func (suite *OrderJournalIntegrationTestSuite) createTestOrder() *order.Order {
	tomatoes, err := order.NewItem("Tomatoes", 20, 45)
	suite.Require().NoError(err)
	chilies, err := order.NewItem("Chilies", 5, 80)
	suite.Require().NoError(err)

	o, err := order.NewOrder(
		kernel.NewOrderedUUID(),
		suite.party("buyer-1", kernel.RoleBuyer, "Asha"),
		suite.party("seller-1", kernel.RoleSeller, "Ravi Farms"),
		[]order.Item{tomatoes, chilies},
		time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	)
	suite.Require().NoError(err)
	return o
}

func (suite *OrderJournalIntegrationTestSuite) party(id string, role kernel.Role, name string) order.Party {
	l, err := kernel.NewLocation(28.6139, 77.2090)
	suite.Require().NoError(err)
	p, err := order.NewParty(id, role, name, l, true, time.Now())
	suite.Require().NoError(err)
	return p
}

func TestOrderJournalIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(OrderJournalIntegrationTestSuite))
}
