package support

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/ledgerview/internal/support/repository"
	"github.com/smallbiznis/ledgerview/internal/support/service"
)

var Module = fx.Module("support.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
