package services

import (
	"context"
	"testing"

	"idcard.link/models"
	"idcard.link/pkg/testdb"
	"idcard.link/repositories"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const seniorPrefix = "LC-SC-"

type fixture struct {
	db     *gorm.DB
	svc    *CardService[models.SeniorCard, *models.SeniorCard]
	assets *AssetStore
	root   string
}

func newFixture(t *testing.T, opts CardServiceOptions) *fixture {
	t.Helper()
	db := testdb.Open(t)
	root := t.TempDir()
	assets := NewAssetStore(root)
	return &fixture{
		db:     db,
		svc:    newSeniorService(db, assets, opts),
		assets: assets,
		root:   root,
	}
}

func newSeniorService(db *gorm.DB, assets IAssetStore, opts CardServiceOptions) *CardService[models.SeniorCard, *models.SeniorCard] {
	return NewCardService[models.SeniorCard, *models.SeniorCard](
		db,
		models.SeniorVariant(seniorPrefix),
		repositories.NewCardRepository[models.SeniorCard, *models.SeniorCard](db),
		NewIdentifierAllocator(db, repositories.NewSequenceRepository(db)),
		assets,
		NewAuditService(repositories.NewAuditRepository(db)),
		opts,
	)
}

func seniorCard(name string) *models.SeniorCard {
	return &models.SeniorCard{CardInfo: models.CardInfo{
		FullName:  name,
		BirthDate: "1950-04-12",
		Address:   "Poblacion",
	}}
}

// insertRaw stores a card with a fixed number, bypassing the allocator.
func insertRaw(t *testing.T, db *gorm.DB, cardNo, name string) {
	t.Helper()
	card := seniorCard(name)
	card.SCID = cardNo
	card.Status = models.CardStatusID
	require.NoError(t, db.WithContext(context.Background()).Create(card).Error, "insert %s", cardNo)
}
