package insurance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/insurance-engine/insurance"
)

func TestAmountToWords(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "CERO PESOS"},
		{"1", "UNO PESOS"},
		{"16", "DIECISÉIS PESOS"},
		{"21", "VEINTIUNO PESOS"},
		{"45", "CUARENTA Y CINCO PESOS"},
		{"100", "CIEN PESOS"},
		{"101", "CIENTO UNO PESOS"},
		{"660", "SEISCIENTOS SESENTA PESOS"},
		{"1000", "MIL PESOS"},
		{"1260", "MIL DOSCIENTOS SESENTA PESOS"},
		{"21000", "VEINTIÚN MIL PESOS"},
		{"31500", "TREINTA Y UN MIL QUINIENTOS PESOS"},
		{"101000", "CIENTO UN MIL PESOS"},
		{"1000000", "UN MILLÓN PESOS"},
		{"2500000", "DOS MILLONES QUINIENTOS MIL PESOS"},
		{"1500.25", "MIL QUINIENTOS PUNTO DOS CINCO PESOS"},
		{"10.50", "DIEZ PUNTO CINCO PESOS"},
		{"7.05", "SIETE PUNTO CERO CINCO PESOS"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, insurance.AmountToWords(dec(tt.amount)))
		})
	}
}
