package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// TicketData holds the fields rendered onto a printable ticket.
type TicketData struct {
	TicketNumber string
	EventTitle   string
	SessionDate  string
	TimeSlot     string
	Venue        string
	TicketType   string
	Amount       float64
	HolderName   string
	HolderEmail  string
	QRCodePNG    []byte
}

// GenerateTicketPDF renders an A5 landscape e-ticket with the scan QR code.
func GenerateTicketPDF(data *TicketData) ([]byte, error) {
	doc := gofpdf.New("L", "mm", "A5", "")
	doc.SetMargins(12, 12, 12)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 20)
	doc.Cell(0, 12, "Zest")
	doc.Ln(14)

	doc.SetFont("Helvetica", "B", 14)
	doc.Cell(0, 8, data.EventTitle)
	doc.Ln(10)

	doc.SetFont("Helvetica", "", 11)
	rows := [][2]string{
		{"Ticket", data.TicketNumber},
		{"Type", data.TicketType},
		{"Date", data.SessionDate},
		{"Time", data.TimeSlot},
		{"Venue", data.Venue},
		{"Name", data.HolderName},
		{"Email", data.HolderEmail},
		{"Amount", fmt.Sprintf("INR %.2f", data.Amount)},
	}
	for _, row := range rows {
		doc.SetFont("Helvetica", "B", 11)
		doc.CellFormat(28, 7, row[0], "", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 11)
		doc.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
	}

	if len(data.QRCodePNG) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		doc.RegisterImageOptionsReader("ticket-qr", opts, bytes.NewReader(data.QRCodePNG))
		pageW, _ := doc.GetPageSize()
		doc.ImageOptions("ticket-qr", pageW-62, 24, 50, 50, false, opts, 0, "")
	}

	doc.SetY(-20)
	doc.SetFont("Helvetica", "I", 8)
	doc.Cell(0, 5, "Present this QR code at the venue entrance. Valid for one entry only.")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render ticket PDF: %w", err)
	}

	return buf.Bytes(), nil
}
