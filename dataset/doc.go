// Package dataset provides the agricultural productivity dataset.
//
// The data is the OWID copy of the USDA "Agricultural total factor
// productivity" table: one row per (Entity, Year) with the tfp index and a
// set of output and input quantity columns. Regional and income-group
// aggregates are removed on load, leaving countries only.
//
// # Loading
//
//	table, err := dataset.Open(ctx, dataset.Options{
//	    Source:    dataset.SourceCSV,
//	    CachePath: "downloads/data.csv",
//	    Timeout:   time.Minute,
//	})
//
// The CSV is downloaded once and cached. A SQLite copy can be kept with Store:
//
//	store, _ := dataset.OpenStore("tfp.db")
//	defer store.Close()
//	err = store.Save(ctx, table)
//
// # Immutability
//
// A Table never changes after construction. Rows, All, Countries and Columns
// return copies.
package dataset
