package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"bitbucket.org/dtolpin/gpr/gpr"
)

// layout describes the columns of a data file: the point
// coordinates, then aux auxiliary covariates, then the prior mean
// if trend is set, then the output if target is set.
type layout struct {
	aux    int
	trend  bool
	target bool
}

func (l layout) extra() int {
	n := l.aux
	if l.trend {
		n++
	}
	if l.target {
		n++
	}
	return n
}

// table is a parsed data file.
type table struct {
	in    gpr.Inputs
	trend []float64
	y     []float64
}

func (t *table) dims() (dim, adim int) {
	if len(t.in.X) != 0 {
		dim = len(t.in.X[0])
	}
	if len(t.in.Aux) != 0 {
		adim = len(t.in.Aux[0])
	}
	return dim, adim
}

// load parses records from csv according to the layout.
func (l layout) load(rdr io.Reader) (*table, error) {
	t := &table{}
	if l.aux > 0 {
		t.in.Aux = [][]float64{}
	}
	r := csv.NewReader(rdr)
	r.Comment = '#'
	r.TrimLeadingSpace = true
	for line := 1; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		dim := len(record) - l.extra()
		if dim < 1 {
			return nil, fmt.Errorf("record %d: %d fields, want more than %d",
				line, len(record), l.extra())
		}
		fields := make([]float64, len(record))
		for i := range record {
			fields[i], err = strconv.ParseFloat(record[i], 64)
			if err != nil {
				return nil, fmt.Errorf("record %d, field %d: %w", line, i+1, err)
			}
		}
		t.in.X = append(t.in.X, fields[:dim:dim])
		k := dim
		if l.aux > 0 {
			t.in.Aux = append(t.in.Aux, fields[k:k+l.aux:k+l.aux])
			k += l.aux
		}
		if l.trend {
			t.trend = append(t.trend, fields[k])
			k++
		}
		if l.target {
			t.y = append(t.y, fields[k])
		}
	}
	if len(t.in.X) == 0 {
		return nil, errors.New("no records")
	}
	return t, nil
}

// loadFile loads a table from a file, or from stdin if path is "-".
func (l layout) loadFile(path string, stdin io.Reader) (*table, error) {
	if path == "-" {
		return l.load(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := l.load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// writeRows writes the query points followed by the columns.
func writeRows(w io.Writer, in gpr.Inputs, columns ...[]float64) error {
	cw := csv.NewWriter(w)
	for i, x := range in.X {
		record := make([]string, 0, len(x)+len(columns))
		for _, v := range x {
			record = append(record, formatFloat(v))
		}
		if in.Aux != nil {
			for _, v := range in.Aux[i] {
				record = append(record, formatFloat(v))
			}
		}
		for _, c := range columns {
			record = append(record, formatFloat(c[i]))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
