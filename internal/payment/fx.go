package payment

import (
	paymentdomain "github.com/vyaparlabs/gstbill/internal/payment/domain"
	"github.com/vyaparlabs/gstbill/internal/payment/gateway"
	"github.com/vyaparlabs/gstbill/internal/payment/service"
	"github.com/vyaparlabs/gstbill/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(gateway.NewClient),
	fx.Provide(repository.ProvideStore[paymentdomain.PaymentOrder]),
	fx.Provide(service.NewService),
)
