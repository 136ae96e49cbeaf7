package invoice

import (
	invoicedomain "github.com/vyaparlabs/gstbill/internal/invoice/domain"
	"github.com/vyaparlabs/gstbill/internal/invoice/render"
	"github.com/vyaparlabs/gstbill/internal/invoice/service"
	"github.com/vyaparlabs/gstbill/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.ProvideStore[invoicedomain.Transaction]),
	fx.Provide(render.NewRenderer),
	fx.Provide(service.NewService),
)
