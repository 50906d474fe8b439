// Package handlers provides pre-configured whloader handlers for public datasets.
package handlers

import (
	"go.nownabe.dev/whloader"
)

// BrowserUserAgent is sent to portals which reject non-browser clients with 403.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Table identifies the destination table. Empty fields fall back to handler defaults.
type Table struct {
	Database string
	Schema   string
	Table    string
}

func destination(conn whloader.Config, t Table, defaults Table) whloader.Config {
	conn.Database = firstNonEmpty(t.Database, conn.Database, defaults.Database)
	conn.Schema = firstNonEmpty(t.Schema, conn.Schema, defaults.Schema)
	conn.Table = firstNonEmpty(t.Table, conn.Table, defaults.Table)
	return conn
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}

// CSVDataset builds a handler for a CSV file with a header row.
func CSVDataset(name, url string, conn whloader.Config, table Table, notifier whloader.Notifier) *whloader.Handler {
	return &whloader.Handler{
		Name:      name,
		URL:       url,
		UserAgent: BrowserUserAgent,
		Parser:    whloader.CSVParser(),
		Notifier:  notifier,

		Destination: destination(conn, table, Table{}),
	}
}

// XLSDataset builds a handler for the first sheet of an Excel 97-2003 workbook
// whose first row is the header.
func XLSDataset(name, url string, conn whloader.Config, table Table, notifier whloader.Notifier) *whloader.Handler {
	return &whloader.Handler{
		Name:      name,
		URL:       url,
		UserAgent: BrowserUserAgent,
		Parser:    whloader.XLSParser(),
		Notifier:  notifier,

		Destination: destination(conn, table, Table{}),
	}
}
