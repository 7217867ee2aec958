package alert

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/ledgerview/internal/alert/repository"
	"github.com/smallbiznis/ledgerview/internal/alert/service"
)

var Module = fx.Module("alert.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
