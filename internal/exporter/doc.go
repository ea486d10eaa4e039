// Package exporter renders report payloads into downloadable formats.
//
// Every exporter implements report.Renderer:
//
// CSVRenderer: metric/value/unit rows with an optional UTF-8 BOM for Excel.
//
// XLSXRenderer: a single "Report" sheet with the summary, report metadata
// and metric table.
//
// PDFRenderer: the HTML report printed through headless Chrome.
//
// Example usage:
//
//	set := exporter.NewSet(report.MustHTMLRenderer(), cfg.Export, logger)
//	r, err := set.Lookup("xlsx")
//	if err != nil {
//		return err
//	}
//	err = assembler.Deliver(ctx, w, payload, r)
package exporter
