// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package pathwas

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// GeneResolver maps gene identifiers (HGNC symbols, Entrez IDs) to stable
// identifiers such as Ensembl gene IDs. The lookup itself is an external
// service; this is its contract.
type GeneResolver interface {
	// Resolve returns a mapping for the identifiers it could resolve;
	// unresolved identifiers are simply absent from the result.
	Resolve(genes []string) (map[string]string, error)
}

type tsvResolver map[string]string

func (m tsvResolver) Resolve(genes []string) (map[string]string, error) {
	out := map[string]string{}
	for _, g := range genes {
		if id, ok := m[g]; ok {
			out[g] = id
		}
	}
	return out, nil
}

// ReadGeneMap reads a two-column tab-separated identifier mapping
// (source, target) and returns it as a GeneResolver. Blank lines and
// lines starting with '#' are skipped.
func ReadGeneMap(rdr io.Reader) (GeneResolver, error) {
	m := tsvResolver{}
	scanner := bufio.NewScanner(rdr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: gene map line %q does not have two fields", ErrInvalidArgument, line)
		}
		m[fields[0]] = fields[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// RenameGenes returns a copy of expr with its gene columns renamed through
// the resolver. Unresolved genes keep their original label. When renaming
// produces duplicate labels, the first column wins and the rest are
// dropped.
func RenameGenes(expr *Frame, resolver GeneResolver) (*Frame, error) {
	mapping, err := resolver.Resolve(expr.ColIDs())
	if err != nil {
		return nil, err
	}
	log.Infof("converted %d gene identifiers", len(mapping))

	seen := map[string]bool{}
	var keepOld, keepNew []string
	dropped := 0
	for _, id := range expr.ColIDs() {
		name := id
		if ens, ok := mapping[id]; ok {
			name = ens
		}
		if seen[name] {
			dropped++
			continue
		}
		seen[name] = true
		keepOld = append(keepOld, id)
		keepNew = append(keepNew, name)
	}
	if dropped > 0 {
		log.Warnf("dropped %d duplicate gene columns after identifier conversion", dropped)
	}
	sub, err := expr.SelectCols(keepOld)
	if err != nil {
		return nil, err
	}
	nrow, ncol := sub.Dims()
	data := make([]float64, nrow*ncol)
	for i := 0; i < nrow; i++ {
		for j := 0; j < ncol; j++ {
			data[i*ncol+j] = sub.At(i, j)
		}
	}
	return NewFrame(sub.RowIDs(), keepNew, data)
}

// ConvertGeneList maps a gene list through the resolver, keeping the
// original identifier where no mapping exists.
func ConvertGeneList(genes []string, resolver GeneResolver) ([]string, error) {
	mapping, err := resolver.Resolve(genes)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(genes))
	for i, g := range genes {
		if id, ok := mapping[g]; ok {
			out[i] = id
		} else {
			out[i] = g
		}
	}
	return out, nil
}

// ReadGMT parses gene sets in GMT format: one set per line,
// name <tab> description <tab> gene [<tab> gene ...].
func ReadGMT(rdr io.Reader) (map[string][]string, error) {
	sets := map[string][]string{}
	scanner := bufio.NewScanner(rdr)
	scanner.Buffer(make([]byte, 1<<20), 1<<24)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: GMT line for %q has no genes", ErrInvalidArgument, fields[0])
		}
		var genes []string
		for _, g := range fields[2:] {
			if g != "" {
				genes = append(genes, g)
			}
		}
		sets[fields[0]] = genes
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	log.Infof("loaded %d gene sets", len(sets))
	return sets, nil
}

// ReadPathwaysJSON reads a pathway name -> gene list mapping from JSON.
func ReadPathwaysJSON(rdr io.Reader) (map[string][]string, error) {
	var pathways map[string][]string
	dec := json.NewDecoder(rdr)
	if err := dec.Decode(&pathways); err != nil {
		return nil, err
	}
	return pathways, nil
}
