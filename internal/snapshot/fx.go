package snapshot

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/ledgerview/internal/snapshot/service"
)

var Module = fx.Module("snapshot.service",
	fx.Provide(service.New),
)
