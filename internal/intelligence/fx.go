package intelligence

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/ledgerview/internal/intelligence/service"
)

var Module = fx.Module("intelligence.service",
	fx.Provide(service.New),
)
