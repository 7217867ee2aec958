package export

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/ledgerview/internal/export/service"
)

var Module = fx.Module("export.service",
	fx.Provide(service.New),
)
