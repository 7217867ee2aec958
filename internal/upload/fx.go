package upload

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/ledgerview/internal/upload/repository"
	"github.com/smallbiznis/ledgerview/internal/upload/service"
)

var Module = fx.Module("upload.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
