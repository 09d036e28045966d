// Package fileclean cleans tabular data and records every change it makes.
//
// fileclean reads a table from CSV, TSV, LTSV, Parquet or Excel (XLSX) files,
// runs a fixed sequence of cleaning stages over it and writes the cleaned table
// together with a human readable cleaning log.
//
// # Features
//
//   - Missing values: drop, fill with mean, median or mode, or a "smart" policy
//     that fills or drops per column depending on kind and missing percentage
//   - Type normalization: integer coercion of numeric columns and best-effort
//     parsing of date columns written in mixed formats
//   - Duplicate removal on all columns or on a key, keeping the first, the last
//     or no occurrence
//   - Column name standardization (lower snake case) and text standardization
//     (trimmed, title case, email addresses lowercased)
//   - Automatic handling of compressed files (gzip, bzip2, xz, zstandard)
//   - Persistence of the cleaned table and its log into SQLite or PostgreSQL
//
// # Basic Usage
//
//	table, err := fileclean.Load("dirty_data.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	session := fileclean.NewSession(table)
//	report := session.Run(fileclean.StrategySmart, fileclean.KeepFirst, "Customer ID")
//
//	if err := fileclean.Dump(session.Table(), "cleaned_data.csv"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := fileclean.SaveLog(session.Log(), "cleaning_log.txt"); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("removed %d rows\n", report.RowsRemoved)
//
// # Stages
//
// Each stage is also available as a pure function over *model.Table
// (HandleMissing, NormalizeTypes, RemoveDuplicates, StandardizeNames,
// StandardizeText). Stages never modify their input; they return a new table
// that shares the unchanged columns.
//
// # Table Naming
//
// Table names are derived from file paths:
//   - "users.csv" becomes table "users"
//   - "data.tsv.gz" becomes table "data"
//   - "/path/to/logs.ltsv" becomes table "logs"
package fileclean
