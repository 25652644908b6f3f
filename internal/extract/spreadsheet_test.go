package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/samrosenbaum/v0-cracker-sub004/constants"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/common"
)

func buildWorkbook(t *testing.T, cells map[string]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	for ref, val := range cells {
		if err := f.SetCellValue("Sheet1", ref, val); err != nil {
			t.Fatalf("set cell %s: %v", ref, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestSpreadsheetFlattening(t *testing.T) {
	data := buildWorkbook(t, map[string]string{
		"A1": "Name", "B1": "Vehicle",
		"A2": "John Smith", "B2": "Toyota Camry",
	})

	res := newTestRouter().Extract(context.Background(), "persons.xlsx", data)

	if res.Method != constants.MethodSpreadsheet {
		t.Errorf("method = %q", res.Method)
	}
	if res.Confidence != 0.98 {
		t.Errorf("confidence = %v", res.Confidence)
	}
	if !strings.Contains(res.Text, "Sheet: Sheet1") {
		t.Errorf("text missing sheet marker: %q", res.Text)
	}
	if !strings.Contains(res.Text, "Row 1: Name: John Smith | Vehicle: Toyota Camry") {
		t.Errorf("text = %q", res.Text)
	}

	if res.StructuredData == nil || len(res.StructuredData.Tables) != 1 {
		t.Fatalf("tables = %+v", res.StructuredData)
	}
	table := res.StructuredData.Tables[0]
	if table.Name != "Sheet1" || len(table.Rows) != 1 {
		t.Errorf("table = %+v", table)
	}

	// The flattened text runs through the miner like any other text.
	foundVehicle := false
	for _, e := range res.StructuredData.Entities {
		if e.Type == "vehicle" && e.Name == "Toyota Camry" {
			foundVehicle = true
		}
	}
	if !foundVehicle {
		t.Errorf("vehicle not mined from flattened text: %+v", res.StructuredData.Entities)
	}
}

func TestSpreadsheetEmptyWorkbook(t *testing.T) {
	data := buildWorkbook(t, nil)
	res := newTestRouter().Extract(context.Background(), "blank.xlsx", data)

	if res.Text != PlaceholderNoText {
		t.Errorf("text = %q", res.Text)
	}
	if res.Confidence != 0.1 || !res.NeedsReview {
		t.Errorf("conf=%v review=%v", res.Confidence, res.NeedsReview)
	}
}

func TestSpreadsheetCorruptFile(t *testing.T) {
	res := newTestRouter().Extract(context.Background(), "broken.xlsx", []byte("not a zip"))

	if res.Metadata["errorCode"] != common.CodeSpreadsheetFailed {
		t.Errorf("errorCode = %v", res.Metadata["errorCode"])
	}
	if !res.NeedsReview {
		t.Error("corrupt workbook must flag review")
	}
}
