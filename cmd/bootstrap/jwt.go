package bootstrap

import (
	"log/slog"

	"table-reservation/internal/handler/middleware"
	"table-reservation/internal/pkg/config"
	"table-reservation/internal/pkg/jwt"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		NewTokenValidator,
	),
)

// NewTokenValidator returns nil when JWT_SECRET is unset, which leaves write routes open.
func NewTokenValidator(cfg config.Config, logger *slog.Logger) middleware.TokenValidator {
	if cfg.JWT.Secret == "" {
		logger.Warn("JWT_SECRET not set, write routes are unauthenticated")
		return nil
	}
	return jwt.NewService(cfg.JWT.Secret, cfg.JWT.Duration)
}
