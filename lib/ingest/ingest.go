// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package ingest reads batches of transactions from delimited text
// files, the one batch-source format this repository supports
// directly -- everything upstream of that (log parsing, enrichment,
// discretization) is an external collaborator's job, not the core's.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wimleers/fpstream/lib/mining"
)

// ReadBatchFile reads one batch from path: one transaction per line,
// items separated by commas, leading/trailing whitespace trimmed from
// both lines and items, blank lines and lines starting with '#'
// skipped.
func ReadBatchFile(path string) ([][]mining.ItemName, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return ReadBatch(fh)
}

// ReadBatch reads one batch from r; see ReadBatchFile for the format.
func ReadBatch(r io.Reader) ([][]mining.ItemName, error) {
	var batch [][]mining.ItemName
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		transaction := make([]mining.ItemName, 0, len(fields))
		for _, field := range fields {
			name := strings.TrimSpace(field)
			if name == "" {
				continue
			}
			transaction = append(transaction, mining.ItemName(name))
		}
		if len(transaction) == 0 {
			return nil, fmt.Errorf("line %d: transaction has no items", lineNum)
		}
		batch = append(batch, transaction)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return batch, nil
}
