package components

import (
	"table-reservation/internal/domain/reservation"
	"table-reservation/internal/pkg/clock"
	"table-reservation/internal/pkg/config"
	"table-reservation/internal/usecase/commands"
	"table-reservation/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	NewValidator,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewReservationCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewReservationQueries,
	),
)

func NewValidator(cfg config.Config) (*reservation.Validator, error) {
	loc, err := cfg.Business.Location()
	if err != nil {
		return nil, err
	}
	return reservation.NewValidator(reservation.NewBusinessHours(loc)), nil
}
