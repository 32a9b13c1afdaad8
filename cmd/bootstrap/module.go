package bootstrap

import (
	"table-reservation/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	TelemetryModule,
	DBModule,
	JWTModule,
	RedisModule,
	BrokerModule,
	components.UseCaseModule,
	components.HandlerModule,
)
