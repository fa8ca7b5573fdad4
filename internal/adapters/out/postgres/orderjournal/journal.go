package orderjournal

import (
	"context"

	"harvestlog/internal/adapters/out/postgres"
	"harvestlog/internal/core/domain/model/order"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderJournal implements ports.OrderJournal on Postgres.
type GormOrderJournal struct {
	uowFactory *postgres.GormUnitOfWorkFactory
}

func NewGormOrderJournal(db *gorm.DB) *GormOrderJournal {
	return &GormOrderJournal{uowFactory: postgres.NewGormUnitOfWorkFactory(db)}
}

// Migrate creates or updates the journal tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&OrderSnapshotDTO{}, &OrderEventDTO{})
}

// Record upserts the snapshot of aggregate and appends a from -> current event.
func (j *GormOrderJournal) Record(ctx context.Context, aggregate *order.Order, from order.Status) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	uow := j.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	snapshot := snapshotFromDomain(aggregate)
	if err := uow.DB().Clauses(clause.OnConflict{UpdateAll: true}).Create(&snapshot).Error; err != nil {
		return err
	}

	event := OrderEventDTO{
		OrderID:    snapshot.ID,
		FromStatus: from.String(),
		ToStatus:   snapshot.Status,
		OccurredAt: aggregate.UpdatedAt(),
	}
	if err := uow.DB().Create(&event).Error; err != nil {
		return err
	}

	return uow.Commit(ctx)
}
