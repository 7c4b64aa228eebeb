package biz

import (
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
)

var Module = fx.Module("biz",
	fx.Provide(clockwork.NewRealClock),
	fx.Provide(NewAuthUseCase),
	fx.Provide(NewCheckUseCase),
)
