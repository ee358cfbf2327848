package components

import (
	"shuttlecourt/internal/pkg/clock"
	"shuttlecourt/internal/usecase/commands"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		commands.NewAuthCommands,
		commands.NewAdminCommands,
		commands.NewOrderLineCommands,
		commands.NewSweepCommands,
		fx.Annotate(
			commands.NewBookingCommands,
			fx.ParamTags(`name:"cachedCourts"`),
		),
		fx.Annotate(
			commands.NewCheckoutCommands,
			fx.ParamTags(`name:"rawCourts"`),
		),
	),
)
