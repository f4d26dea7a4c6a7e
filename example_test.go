package gristle_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/willzfarmer/gristle"
)

// ExampleDetector_Detect shows detection of a multi-character delimiter and a header.
func ExampleDetector_Detect() {
	sample := []byte("id::name\n1::alice\n2::bob\n")

	dialect, err := gristle.NewDetector().Detect(sample, gristle.Hints{})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(dialect)

	// Output:
	// delimiter="::" quoting=false header=true
}

func ExampleNewReader() {
	input := "a|\"b|c\"|d\n1|2|3\n"

	r := gristle.NewReader(strings.NewReader(input), gristle.NewDialect("|"))
	for record, err := range r.All() {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%q\n", record)
	}

	// Output:
	// ["a" "b|c" "d"]
	// ["1" "2" "3"]
}

// ExampleConvert converts comma separated data to a tab separated layout and keeps the header.
func ExampleConvert() {
	input := "name,age,city\nalice,30,\"Paris, FR\"\nbob,25,Lima\n"

	options := gristle.NewConvertOptions().
		WithOutputDelimiter("\t").
		WithKeepHeader(true)

	stats, err := gristle.Convert(context.Background(), strings.NewReader(input), os.Stdout, options)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(stats.Written, "records")

	// Output:
	// name	age	city
	// alice	30	Paris, FR
	// bob	25	Lima
	// 3 records
}

func ExampleAggregateFrequency() {
	input := "id|color\n1|red\n2|blue\n3|red\n4|green\n5|red\n"
	src := gristle.NewReader(strings.NewReader(input), gristle.NewDialect("|"))

	table, stats, err := gristle.AggregateFrequency(context.Background(), src, 1, gristle.WithSkipHeader(true))
	if err != nil {
		log.Fatal(err)
	}
	if err := gristle.WriteFrequency(os.Stdout, table.Entries()); err != nil {
		log.Fatal(err)
	}
	fmt.Println("truncated:", stats.Truncated)

	// Output:
	// red          -    3
	// blue         -    1
	// green        -    1
	// truncated: false
}

// ExampleAggregateScalar combines several inputs into one maximum.
func ExampleAggregateScalar() {
	inputs := []string{"3,a\n9,b\n", "", "7,c\n"}

	agg, err := gristle.NewScalarAggregator(gristle.ScalarInteger, gristle.ActionMax)
	if err != nil {
		log.Fatal(err)
	}
	for _, input := range inputs {
		src := gristle.NewReader(strings.NewReader(input), gristle.NewDialect(","))
		if err := gristle.AggregateScalar(context.Background(), src, 0, agg); err != nil {
			log.Fatal(err)
		}
	}

	result, err := agg.Result()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(result)

	// Output:
	// 9
}
