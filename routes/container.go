package routes

import (
	"idcard.link/configs"
	"idcard.link/models"
	"idcard.link/repositories"
	"idcard.link/services"

	"gorm.io/gorm"
)

// Container holds the services the HTTP layer needs.
type Container struct {
	Config     *configs.AppConfig
	Senior     services.ICardService[models.SeniorCard]
	Youth      services.ICardService[models.YouthCard]
	Assets     services.IAssetStore
	Auth       services.IAuthService
	Candidates services.ICandidateService
	Users      services.IUserService
}

// NewContainer wires repositories and services on db.
func NewContainer(db *gorm.DB, cfg *configs.AppConfig, revoked services.RevocationStore) *Container {
	allocator := services.NewIdentifierAllocator(db, repositories.NewSequenceRepository(db))
	assets := services.NewAssetStore(cfg.StoragePath)
	audit := services.NewAuditService(repositories.NewAuditRepository(db))
	opts := services.CardServiceOptions{AllowCardNoEdit: cfg.AllowCardNoEdit}

	senior := services.NewCardService[models.SeniorCard, *models.SeniorCard](
		db, models.SeniorVariant(cfg.SeniorPrefix),
		repositories.NewCardRepository[models.SeniorCard, *models.SeniorCard](db),
		allocator, assets, audit, opts)
	youth := services.NewCardService[models.YouthCard, *models.YouthCard](
		db, models.YouthVariant(cfg.YouthPrefix),
		repositories.NewCardRepository[models.YouthCard, *models.YouthCard](db),
		allocator, assets, audit, opts)

	userRepo := repositories.NewUserRepository(db)
	auth := services.NewAuthService(userRepo, revoked, services.AuthOptions{
		Secret:               []byte(cfg.JWTSecret),
		TTL:                  cfg.SessionTTL,
		AllowLegacyPasswords: cfg.AllowLegacyPasswords,
	})

	return &Container{
		Config:     cfg,
		Senior:     senior,
		Youth:      youth,
		Assets:     assets,
		Auth:       auth,
		Candidates: services.NewCandidateService(repositories.NewCandidateRepository(db)),
		Users:      services.NewUserService(userRepo, auth),
	}
}
