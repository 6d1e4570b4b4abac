// Command dump-data-file parses every page of a space data file and
// prints the rows it holds as a formatted table.
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/tinyspace/spaceengine/internal/space"
)

func main() {
	filename := flag.String("filename", "", "path to the data file to dump")
	flag.Parse()

	if *filename == "" {
		fmt.Fprintln(os.Stderr, "dump-data-file: -filename is required")
		os.Exit(1)
	}

	headers, err := space.Headers(*filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dump-data-file: %v\n", err)
		os.Exit(1)
	}
	rows, err := space.Dump(*filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dump-data-file: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "page\ttype\tprev\tnext\tdata_length")
	for _, h := range headers {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\n", h.PageID, h.PageType, h.PreviousID, h.NextID, h.DataLength)
	}
	w.Flush()

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "id\tpayload")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\n", r.ID, r.Payload)
	}
	w.Flush()
}
