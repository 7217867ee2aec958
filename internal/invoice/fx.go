package invoice

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/ledgerview/internal/invoice/repository"
	"github.com/smallbiznis/ledgerview/internal/invoice/service"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
