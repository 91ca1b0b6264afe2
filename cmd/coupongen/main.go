// Command coupongen writes sample coupon catalogue files.
//
// The three files overlap so that a validator requiring two matches accepts
// VALIDONE1, VALIDTWO12, ALLTHREE1, SUMMER2024 and WINTER2024, and rejects
// the ONLY* codes and SPRING2024.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"bookstore/internal/coupon"

	"github.com/shopspring/decimal"
)

func main() {
	dir := flag.String("dir", "data/coupons", "output directory")
	flag.Parse()

	if err := run(*dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rule(code string, rate float64) coupon.Rule {
	return coupon.Rule{Code: code, Rate: decimal.NewFromFloat(rate)}
}

func run(dir string) error {
	catalogues := map[string][]coupon.Rule{
		"couponbase1.gz": {
			rule("VALIDONE1", 0.10),
			rule("VALIDTWO12", 0.12),
			rule("ALLTHREE1", 0.15),
			rule("ONLYONE111", 0.10),
			rule("SUMMER2024", 0.20),
		},
		"couponbase2.gz": {
			rule("VALIDONE1", 0),
			rule("VALIDTWO12", 0),
			rule("ALLTHREE1", 0),
			rule("ONLYTWO222", 0.10),
			rule("WINTER2024", 0.25),
		},
		"couponbase3.gz": {
			rule("WINTER2024", 0),
			rule("SUMMER2024", 0),
			rule("ALLTHREE1", 0),
			rule("ONLYTHREE3", 0.10),
			rule("SPRING2024", 0.05),
		},
	}

	for name, rules := range catalogues {
		path := filepath.Join(dir, name)
		if err := coupon.WriteCatalogueFile(path, rules); err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
		fmt.Printf("Created %s with %d codes\n", path, len(rules))
	}

	fmt.Println("\nSet COUPON_FILES to a comma separated list of these files and COUPON_MIN_MATCH=2.")
	return nil
}
