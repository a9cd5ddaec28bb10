package service

import (
	"testing"
	"time"

	"sheetpos/internal/infra"
	"sheetpos/internal/repository"
	"sheetpos/internal/schema"
	"sheetpos/internal/sheetstest"
)

var registry = schema.Default()

// newSheets starts a fake sheets API with an empty, correctly headed tab for
// every known sheet.
func newSheets(t *testing.T) (*sheetstest.Server, repository.SheetRepository) {
	t.Helper()
	srv := sheetstest.NewServer(t)
	for _, name := range registry.Names() {
		s := registry.MustGet(name)
		header := make([]any, s.Width())
		for i := range header {
			header[i] = name
		}
		srv.Seed(s.Sheet, header)
	}
	client := infra.NewSheetsClient(srv.URL, "", 2*time.Second, nil)
	return srv, repository.NewSheetRepository(client, registry)
}

// row lays out named values in the sheet's column order.
func row(sheet string, values map[schema.Field]any) []any {
	return registry.MustGet(sheet).Encode(values)
}

// seed appends data rows below the existing header.
func seed(srv *sheetstest.Server, sheet string, rows ...[]any) {
	srv.Seed(sheet, append(srv.Rows(sheet)[:1], rows...)...)
}
