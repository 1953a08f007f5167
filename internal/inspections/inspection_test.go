package inspections_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/inspector/internal/inspections"
)

func TestHeaderValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*inspections.HeaderCommand)
		wantErr string
	}{
		{"valid", func(*inspections.HeaderCommand) {}, ""},
		{"missing date", func(c *inspections.HeaderCommand) { c.InspectionDate = "" }, "inspection_date is required"},
		{"bad date", func(c *inspections.HeaderCommand) { c.InspectionDate = "03/02/2026" }, "YYYY-MM-DD"},
		{"missing po", func(c *inspections.HeaderCommand) { c.PONumber = "" }, "po_number is required"},
		{"missing product", func(c *inspections.HeaderCommand) { c.ProductCode = "" }, "product_code is required"},
		{"zero order", func(c *inspections.HeaderCommand) { c.OrderQty = 0 }, "order_qty"},
		{"zero lot", func(c *inspections.HeaderCommand) { c.LotQty = 0 }, "lot_qty"},
		{"zero sample", func(c *inspections.HeaderCommand) { c.SampleQty = 0 }, "sample_qty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := validCommand()
			tt.mutate(&cmd)

			date, err := cmd.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), date)
				return
			}
			assert.ErrorIs(t, err, inspections.ErrInvalidHeader)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNormalize(t *testing.T) {
	cmd := inspections.HeaderCommand{PONumber: "  450 ", Series: " G4\t"}
	cmd.Normalize()

	assert.Equal(t, "450", cmd.PONumber)
	assert.Equal(t, "G4", cmd.Series)
}

func TestPORelease(t *testing.T) {
	i := sampleInspection()
	assert.Equal(t, "45001234-3", i.PORelease())

	i.ReleaseNumber = ""
	assert.Equal(t, "45001234", i.PORelease())
}
