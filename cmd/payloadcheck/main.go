// payloadcheck runs saved forecast.json responses through the normalizer and
// reports how each one is classified.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"weather-lookup/normalize"
)

func main() {
	printRecord := pflag.BoolP("print", "p", false, "Pretty print the normalized record")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: payloadcheck [--print] FILE... (use - for stdin)\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	files := pflag.Args()
	if len(files) == 0 {
		files = []string{"-"}
	}

	failed := 0
	for _, name := range files {
		if err := check(os.Stdout, name, *printRecord); err != nil {
			fmt.Printf("%s: %v\n", name, err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func check(w io.Writer, name string, printRecord bool) error {
	var r io.Reader = os.Stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return fmt.Errorf("failed to open payload: %w", err)
		}
		defer f.Close()
		r = f
	}

	var raw any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	record, err := normalize.Normalize(raw)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s: ok (%s, %s; %d forecast days)\n",
		name, record.Location.Name, record.Location.Country, len(record.Days()))
	if printRecord {
		prettyJSON, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
		fmt.Fprintf(w, "%s\n", prettyJSON)
	}
	return nil
}
