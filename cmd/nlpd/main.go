package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"

	"bitbucket.org/dtolpin/gpr/gpr"
	"gonum.org/v1/gonum/stat"
)

var (
	COMMA  = ","
	SKIP   = 0
	HEADER = false
	JY     = 1
	JMEAN  = 2
	JVAR   = 3
	SD     = false
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			`Computes average negative log predictive density and root
mean squared error of predictions. Invocation:
	%s  [OPTIONS] < PREDICTIONS
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.StringVar(&COMMA, "comma", COMMA, "field separator")
	flag.IntVar(&SKIP, "s", SKIP, "initial records to skip")
	flag.BoolVar(&HEADER, "header", HEADER, "input has a header")
	flag.IntVar(&JY, "y", JY, "index of the output field")
	flag.IntVar(&JMEAN, "mean", JMEAN, "index of the mean field")
	flag.IntVar(&JVAR, "var", JVAR, "index of the variance field")
	flag.BoolVar(&SD, "sd", SD, "the variance field holds the standard deviation")
}

func field(record []string, j int) float64 {
	if j < 0 {
		j += len(record)
	}
	if j < 0 || j >= len(record) {
		log.Fatalf("field %d out of range in %q", j, record)
	}
	v, err := strconv.ParseFloat(record[j], 64)
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func main() {
	flag.Parse()

	rdr := csv.NewReader(os.Stdin)
	rdr.Comma = rune(COMMA[0])
	if HEADER {
		rdr.Read()
	}

	var nlpd, sqerr []float64
	for n := 0; ; n++ {
		record, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
		if n < SKIP {
			continue
		}
		y, mean, vari := field(record, JY), field(record, JMEAN), field(record, JVAR)
		if SD {
			vari *= vari
		}
		nlpd = append(nlpd, gpr.NLPD(y, mean, vari))
		sqerr = append(sqerr, (y-mean)*(y-mean))
	}
	if len(nlpd) == 0 {
		log.Fatal("no predictions")
	}
	fmt.Printf("nlpd=%f rmse=%f\n", stat.Mean(nlpd, nil), math.Sqrt(stat.Mean(sqerr, nil)))
}
