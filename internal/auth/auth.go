package auth

import (
	"fmt"

	authhttp "recordstore/internal/auth/adapter/http"
	"recordstore/internal/auth/adapter/persistence/mongodb"
	"recordstore/internal/auth/adapter/security"
	"recordstore/internal/auth/config"
	"recordstore/internal/auth/domain/repository"
	"recordstore/internal/auth/usecase"
	recordshttp "recordstore/internal/records/adapter/http"
	"recordstore/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// Module bundles accounts, sessions and project API tokens.
type Module struct {
	Repository repository.AuthRepository
	TokenSvc   repository.TokenService
	Usecase    usecase.AuthUsecaseInterface
	Handler    *authhttp.AuthHandler
	Config     *config.Config
}

// NewModule wires the auth module over the metadata database.
func NewModule(db *mongo.Database, cfg *config.Config, log logger.Logger) (*Module, error) {
	repo, err := mongodb.NewMongoAuthRepository(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth repository: %w", err)
	}

	tokenSvc, err := security.NewJWTokenService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	uc := usecase.NewAuthUsecase(repo, tokenSvc, cfg)
	handler := authhttp.NewAuthHandler(uc, log)

	return &Module{
		Repository: repo,
		TokenSvc:   tokenSvc,
		Usecase:    uc,
		Handler:    handler,
		Config:     cfg,
	}, nil
}

// RegisterRoutes mounts the auth endpoints. The records access middleware is
// shared so both modules resolve identity identically.
func (m *Module) RegisterRoutes(router fiber.Router, access *recordshttp.AccessMiddleware) {
	m.Handler.RegisterRoutes(router, access)
}
