package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vyaparlabs/gstbill/internal/config"
)

func TestValidateReportsAllMissingKeys(t *testing.T) {
	err := config.Config{}.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "configuration incomplete")
	assert.Contains(t, err.Error(), "GATEWAY_KEY_ID")
	assert.Contains(t, err.Error(), "GATEWAY_KEY_SECRET")
	assert.Contains(t, err.Error(), "PUBLIC_URL")
	assert.Contains(t, err.Error(), "ADMIN_API_TOKEN")
}

func TestValidateComplete(t *testing.T) {
	cfg := config.Config{
		PublicURL:  "https://billing.example.in",
		AdminToken: "secret",
		Gateway: config.GatewayConfig{
			KeyID:  "rzp_test_key",
			Secret: "rzp_test_secret",
		},
	}
	assert.NoError(t, cfg.Validate())
}
