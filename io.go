// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package pathwas

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kshedden/gonpy"
	"gonum.org/v1/gonum/mat"
)

// ReadFrameCSV reads a labeled matrix from CSV: the header row carries the
// column labels (the first header cell is ignored), every other row starts
// with its row label.
func ReadFrameCSV(rdr io.Reader) (*Frame, error) {
	cr := csv.NewReader(rdr)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, err
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: CSV header has no data columns", ErrInvalidArgument)
	}
	colIDs := header[1:]
	var (
		rowIDs []string
		data   []float64
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if len(rec) != len(header) {
			return nil, fmt.Errorf("%w: CSV row %q has %d fields, want %d", ErrInvalidArgument, rec[0], len(rec), len(header))
		}
		rowIDs = append(rowIDs, rec[0])
		for _, field := range rec[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: CSV row %q: %v", ErrInvalidArgument, rec[0], err)
			}
			data = append(data, v)
		}
	}
	return NewFrame(rowIDs, colIDs, data)
}

// WriteFrameCSV writes f in the layout ReadFrameCSV reads.
func WriteFrameCSV(w io.Writer, f *Frame) error {
	bufw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bufw, ",%s\n", strings.Join(f.ColIDs(), ",")); err != nil {
		return err
	}
	nrow, ncol := f.Dims()
	for i := 0; i < nrow; i++ {
		if _, err := bufw.WriteString(f.RowIDs()[i]); err != nil {
			return err
		}
		for j := 0; j < ncol; j++ {
			if _, err := fmt.Fprintf(bufw, ",%g", f.At(i, j)); err != nil {
				return err
			}
		}
		if err := bufw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bufw.Flush()
}

// ReadLDMatrix reads a square float64 LD matrix from .npy data.
func ReadLDMatrix(rdr io.Reader) (*mat.Dense, error) {
	npy, err := gonpy.NewReader(rdr)
	if err != nil {
		return nil, err
	}
	if len(npy.Shape) != 2 || npy.Shape[0] != npy.Shape[1] {
		return nil, fmt.Errorf("%w: LD matrix must be square, got shape %v", ErrInvalidArgument, npy.Shape)
	}
	data, err := npy.GetFloat64()
	if err != nil {
		return nil, err
	}
	n := npy.Shape[0]
	ld := mat.NewDense(n, n, data)
	if npy.ColumnMajor {
		ld = mat.DenseCopyOf(ld.T())
	}
	return ld, nil
}

// ReadSNPList reads one SNP identifier per line.
func ReadSNPList(rdr io.Reader) ([]string, error) {
	var snps []string
	scanner := bufio.NewScanner(rdr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		snps = append(snps, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return snps, nil
}

// ReadVectorTSV reads a labeled value per line: "key<TAB>value". Key order
// in the file defines the Vector's canonical order.
func ReadVectorTSV(rdr io.Reader) (*Vector, error) {
	var (
		keys []string
		vals []float64
	)
	scanner := bufio.NewScanner(rdr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: vector line %q does not have two fields", ErrInvalidArgument, line)
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: vector line %q: %v", ErrInvalidArgument, line, err)
		}
		keys = append(keys, fields[0])
		vals = append(vals, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewVector(keys, vals)
}

// WriteVectorTSV writes v in the layout ReadVectorTSV reads.
func WriteVectorTSV(w io.Writer, v *Vector) error {
	bufw := bufio.NewWriter(w)
	for i, k := range v.Keys() {
		if _, err := fmt.Fprintf(bufw, "%s\t%g\n", k, v.Values()[i]); err != nil {
			return err
		}
	}
	return bufw.Flush()
}

// ReadCaseStatus reads "sample<TAB>status" lines where status is 0
// (control) or 1 (case).
func ReadCaseStatus(rdr io.Reader) (map[string]bool, error) {
	status := map[string]bool{}
	scanner := bufio.NewScanner(rdr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: case status line %q does not have two fields", ErrInvalidArgument, line)
		}
		switch fields[1] {
		case "0":
			status[fields[0]] = false
		case "1":
			status[fields[0]] = true
		default:
			return nil, fmt.Errorf("%w: case status for %q must be 0 or 1, got %q", ErrInvalidArgument, fields[0], fields[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return status, nil
}
