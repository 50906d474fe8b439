/*

Package whloader loads one tabular dataset into one warehouse table per run.

The pipeline fetches the source over HTTP (or from Cloud Storage), parses it,
normalizes the column names into unquoted identifiers, drops and recreates the
destination table with one text column per source column, and bulk-loads the rows.
Rows the warehouse rejects are skipped and reported in LoadResult instead of
failing the load.

Getting started

	package main

	import (
		"context"
		"os"

		"go.nownabe.dev/whloader"
	)

	func main() {
		loader, err := whloader.New(whloader.WithPrettyLogging())
		if err != nil {
			panic(err)
		}

		h := &whloader.Handler{
			Name:      "lab_results",
			URL:       "https://example.com/lab_results.csv",
			UserAgent: "Mozilla/5.0",
			Parser:    whloader.CSVParser(),
			Notifier: &whloader.SlackNotifier{
				Token:   os.Getenv("SLACK_TOKEN"),
				Channel: os.Getenv("SLACK_CHANNEL"),
			},

			// Destination.
			Destination: whloader.Config{
				Account:   os.Getenv("SNOWFLAKE_ACCOUNT"),
				User:      os.Getenv("SNOWFLAKE_USER"),
				Password:  os.Getenv("SNOWFLAKE_PASSWORD"),
				Database:  os.Getenv("SNOWFLAKE_DATABASE"),
				Warehouse: os.Getenv("SNOWFLAKE_WAREHOUSE"),
				Role:      os.Getenv("SNOWFLAKE_ROLE"),
				Schema:    "WATER_QUALITY",
				Table:     "LAB_RESULTS",
			},
		}

		res, err := loader.Load(context.Background(), h)
		if err != nil {
			os.Exit(1)
		}
		if res.LoadResult.Partial() {
			// alert on skipped rows
		}
	}

*/
package whloader
