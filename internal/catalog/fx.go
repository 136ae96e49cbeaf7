package catalog

import (
	"github.com/vyaparlabs/gstbill/internal/catalog/repository"
	"github.com/vyaparlabs/gstbill/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
