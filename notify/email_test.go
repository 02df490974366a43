package notify_test

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/warp/insurance-engine/config"
	"github.com/warp/insurance-engine/insurance"
	"github.com/warp/insurance-engine/notify"
)

func contractMsg() insurance.ContractEmail {
	return insurance.ContractEmail{
		To:           "admin@escuela12.edu.ar",
		CustomerName: "Escuela N° 12",
		OrderName:    "SO-0042",
		URL:          "https://seguros.example/my/contract/o-1?access_token=abc",
		Summary:      "50% now, 50% in 30 days",
		Total:        decimal.RequireFromString("1260"),
	}
}

func TestBuildContractEmail(t *testing.T) {
	e := notify.BuildContractEmail("seguros@example.com", contractMsg())

	assert.Equal(t, "seguros@example.com", e.From)
	assert.Equal(t, []string{"admin@escuela12.edu.ar"}, e.To)
	assert.Equal(t, "Insurance contract SO-0042", e.Subject)

	body := string(e.Text)
	assert.Contains(t, body, "Dear Escuela N° 12,")
	assert.Contains(t, body, "Amount due: $ 1260.00")
	assert.Contains(t, body, "Payment plan: 50% now, 50% in 30 days")
	assert.Contains(t, body, "/my/contract/o-1?access_token=abc")
}

func TestSender_CancelledContext(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := notify.NewSender(&config.Config{SMTPHost: "127.0.0.1", SMTPPort: 1}, log)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.SendContract(ctx, contractMsg()), context.Canceled)
}
