// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Command regdec generates a register block file from a YAML device
// description:
//
//	regdec -o aux_regs.go aux.yaml
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/internal/regdec"
)

func main() {
	outPtr := flag.String("o", "", "output file (default stdout)")
	checkPtr := flag.Bool("check", false, "only validate the description")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-o file] [-check] description.yaml\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("regdec: ")

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	input := flag.Arg(0)

	f, err := os.Open(input)
	if err != nil {
		log.Fatal(err)
	}
	dev, err := regdec.Parse(f)
	f.Close()
	if err != nil {
		log.Fatalf("%s: %v", input, err)
	}
	if *checkPtr {
		log.Printf("%s: %s, %d registers, %#x bytes", input, dev.Name, len(dev.Registers), dev.Size)
		return
	}

	src, err := regdec.Generate(dev, filepath.Base(input))
	if err != nil {
		log.Fatal(err)
	}
	if *outPtr == "" {
		os.Stdout.Write(src)
		return
	}
	if err := os.WriteFile(*outPtr, src, 0o644); err != nil {
		log.Fatal(err)
	}
}
