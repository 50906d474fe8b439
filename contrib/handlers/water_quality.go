package handlers

import (
	"go.nownabe.dev/whloader"
)

const (
	// LabResultsURL is the discrete water quality lab results of the California
	// Natural Resources Agency open data portal.
	LabResultsURL = "https://data.cnra.ca.gov/dataset/3f96977e-2597-4baa-8c9b-c433cea0685e/resource/a9e7ef50-54c3-4031-8e44-aa46f3c660fe/download/lab_results.csv"

	WaterQualitySchema = "WATER_QUALITY"
	LabResultsTable    = "LAB_RESULTS_TEST_2026"
)

// WaterQualityLabResults builds a handler which reloads the lab results dataset
// into WATER_QUALITY.LAB_RESULTS_TEST_2026 unless table overrides it.
func WaterQualityLabResults(conn whloader.Config, table Table, notifier whloader.Notifier) *whloader.Handler {
	return &whloader.Handler{
		Name:      "water_quality_lab_results",
		URL:       LabResultsURL,
		UserAgent: BrowserUserAgent,
		Parser:    whloader.CSVParser(),
		Notifier:  notifier,

		Destination: destination(conn, table, Table{Schema: WaterQualitySchema, Table: LabResultsTable}),
	}
}
