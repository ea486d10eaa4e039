// Package files finds transaction CSV files on disk for the batch report
// command.
//
// Discovery resolves relative directories against a base path. ExpandInputs
// turns command line arguments into the list of files to process: a directory
// contributes its CSV files in name order, anything else is passed through so
// the caller can report it.
//
//	d := files.NewDiscovery(".")
//	inputs, err := d.ExpandInputs([]string{"exports/", "extra.csv"})
package files
