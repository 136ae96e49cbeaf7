package migration

import (
	catalogdomain "github.com/vyaparlabs/gstbill/internal/catalog/domain"
	"github.com/vyaparlabs/gstbill/internal/config"
	invoicedomain "github.com/vyaparlabs/gstbill/internal/invoice/domain"
	paymentdomain "github.com/vyaparlabs/gstbill/internal/payment/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// The SQL migrations are written for postgres. Other dialects
		// (mysql, sqlite for local development) derive the schema from
		// the models instead.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(
				&catalogdomain.Service{},
				&invoicedomain.Transaction{},
				&invoicedomain.TransactionItem{},
				&paymentdomain.PaymentOrder{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
