package pdf

import (
	"testing"

	"zest-backend/qr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTicketPDF(t *testing.T) {
	qrPNG, err := qr.EncodePNG("ZST-1-ABCD1234", 300)
	require.NoError(t, err)

	raw, err := GenerateTicketPDF(&TicketData{
		TicketNumber: "ZST-1-ABCD1234",
		EventTitle:   "Summer Beats",
		SessionDate:  "2026-06-15",
		TimeSlot:     "18:00",
		Venue:        "Phoenix Arena",
		TicketType:   "General",
		Amount:       250,
		HolderName:   "Asha Rao",
		HolderEmail:  "asha@example.com",
		QRCodePNG:    qrPNG,
	})

	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(raw[:4]))
}
