//go:build ignore

// Command generate-test-corpus writes a synthetic corpus for benchmarking.
// Usage: go run scripts/generate-test-corpus.go -files 10 -rows 5000 -output testdata/bench
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	numFiles = flag.Int("files", 10, "Number of corpus files to generate")
	numRows  = flag.Int("rows", 5000, "Rows per file")
	output   = flag.String("output", "testdata/bench", "Output directory")
	seed     = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var subjects = []string{
	"Basalt", "Obsidian", "Granite", "Limestone", "Quartz",
	"Glass", "Ceramics", "Porcelain", "Bronze", "Iron",
	"Astronomy", "Botany", "Cartography", "Linguistics", "Metallurgy",
}

var sentences = []string{
	"It forms under specific conditions of temperature and pressure.",
	"Early descriptions appear in medieval trade records.",
	"Modern production methods date from the nineteenth century.",
	"Its composition varies considerably by region.",
	"Several competing classification schemes remain in use.",
	"The subject has been studied extensively since antiquity.",
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*output, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}

	nextID := int64(1)
	for f := 0; f < *numFiles; f++ {
		name := fmt.Sprintf("corpus-%03d.csv", f)
		if err := writeFile(filepath.Join(*output, name), rng, &nextID, *numRows); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			os.Exit(1)
		}
	}
	fmt.Printf("wrote %d files, %d rows total to %s\n", *numFiles, *numFiles**numRows, *output)
}

func writeFile(path string, rng *rand.Rand, nextID *int64, rows int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "title", "text"}); err != nil {
		return err
	}

	for i := 0; i < rows; i++ {
		title := fmt.Sprintf("%s of Region %d",
			subjects[rng.Intn(len(subjects))], rng.Intn(1000))

		var body strings.Builder
		for s := 0; s < 3+rng.Intn(5); s++ {
			body.WriteString(sentences[rng.Intn(len(sentences))])
			body.WriteByte(' ')
		}

		record := []string{strconv.FormatInt(*nextID, 10), title, strings.TrimSpace(body.String())}
		if err := w.Write(record); err != nil {
			return err
		}
		*nextID++
	}

	w.Flush()
	return w.Error()
}
