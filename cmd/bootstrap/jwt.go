package bootstrap

import (
	"commerce-core/internal/pkg/jwt"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		jwt.NewManager,
	),
)
