package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/goccy/go-json"

	arrowipc "github.com/VanDung-dev/hierachain-frame/arrow"
	"github.com/VanDung-dev/hierachain-frame/data"
	"github.com/VanDung-dev/hierachain-frame/pool"
)

// Version information
const (
	Version = "0.1.0"
	Name    = "arrowframe"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run renders every named IPC stream, or stdin when none is given, and
// returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(Name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	formatFlag := fs.String("format", "table", "Output format: table, json")
	schemaFlag := fs.Bool("schema", false, "Show the derived columns instead of data")
	versionFlag := fs.Bool("version", false, "Print version and exit")
	jobsFlag := fs.Int("j", runtime.NumCPU(), "Files converted in parallel")
	verboseFlag := fs.Bool("v", false, "Report conversion statistics on stderr")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [options] [file.arrow ...]\n\n", Name)
		fmt.Fprintf(stderr, "Renders Arrow IPC streams as a table. Reads stdin when no file is given.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *versionFlag {
		fmt.Fprintf(stdout, "%s v%s\n", Name, Version)
		return 0
	}

	if *formatFlag != "table" && *formatFlag != "json" {
		fmt.Fprintf(stderr, "Error: unknown format %q\n", *formatFlag)
		return 2
	}

	if fs.NArg() == 0 {
		if err := render(stdin, stdout, *formatFlag, *schemaFlag); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	format, schema := *formatFlag, *schemaFlag
	files := pool.New(Name, *jobsFlag, func(_ context.Context, name string) ([]byte, error) {
		var buf bytes.Buffer
		err := renderFile(name, &buf, format, schema)
		return buf.Bytes(), err
	})

	results := files.Run(context.Background(), fs.Args())
	if *verboseFlag {
		stats := files.Stats()
		fmt.Fprintf(stderr, "%s: %d converted, %d failed, %d workers\n", Name, stats.Completed, stats.Failed, stats.Workers)
	}

	for i, res := range results {
		name := fs.Arg(i)
		if res.Err != nil {
			fmt.Fprintf(stderr, "Error: %s: %v\n", name, res.Err)
			return 1
		}
		if fs.NArg() > 1 {
			if i > 0 {
				fmt.Fprintln(stdout)
			}
			fmt.Fprintf(stdout, "==> %s <==\n", name)
		}
		if _, err := stdout.Write(res.Value); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}

func renderFile(name string, w io.Writer, format string, schema bool) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	return render(f, w, format, schema)
}

func render(r io.Reader, w io.Writer, format string, schema bool) error {
	records, err := arrowipc.NewCodec().ReadFrom(r)
	if err != nil {
		return err
	}
	defer arrowipc.ReleaseAll(records)

	df, err := data.BatchToDataFrame(records)
	if err != nil {
		return err
	}
	defer df.Release()

	switch {
	case schema:
		return writeSchema(w, df, format)
	case format == "json":
		return writeJSON(w, df)
	default:
		table, err := df.Print()
		if err != nil {
			return err
		}
		if table != "" {
			_, err = fmt.Fprintln(w, table)
		}
		return err
	}
}

func writeSchema(w io.Writer, df *data.DataFrame, format string) error {
	if format == "json" {
		type column struct {
			Name string `json:"name"`
			Type string `json:"type"`
		}
		cols := make([]column, len(df.Columns()))
		for i, c := range df.Columns() {
			cols[i] = column{Name: c.Name(), Type: c.Type().String()}
		}
		return json.NewEncoder(w).Encode(cols)
	}

	for _, c := range df.Columns() {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", c.Name(), c.Type()); err != nil {
			return err
		}
	}
	return nil
}

// writeJSON writes one JSON object per row, keyed by column name.
func writeJSON(w io.Writer, df *data.DataFrame) error {
	enc := json.NewEncoder(w)
	cols := df.Columns()

	for _, row := range df.Rows() {
		obj := make(map[string]any, len(cols))
		for i, v := range row.Values() {
			native, err := v.Native()
			if err != nil {
				return err
			}
			obj[cols[i].Name()] = native
		}
		if err := enc.Encode(obj); err != nil {
			return err
		}
	}
	return nil
}
