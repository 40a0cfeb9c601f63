// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package export writes stored facts to flat files.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/penny-vault/secfacts/data"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type Format string

const (
	CSV     Format = "csv"
	Parquet Format = "parquet"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case CSV:
		return CSV, nil
	case Parquet:
		return Parquet, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Extension returns the file extension including the leading dot
func (format Format) Extension() string {
	return "." + string(format)
}

// WriteFile writes records to fn in the given format
func WriteFile(records []*data.FactRecord, fn string, format Format) error {
	switch format {
	case CSV:
		fh, err := os.Create(fn)
		if err != nil {
			return eris.Wrapf(err, "create %s", fn)
		}

		if err := WriteCSV(records, fh); err != nil {
			fh.Close()
			return err
		}

		if err := fh.Close(); err != nil {
			return eris.Wrapf(err, "close %s", fn)
		}

		return nil
	case Parquet:
		return WriteParquet(records, fn)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteCSV writes records with a header row
func WriteCSV(records []*data.FactRecord, out io.Writer) error {
	if err := gocsv.Marshal(records, out); err != nil {
		return eris.Wrap(err, "write csv")
	}

	log.Info().Int("NumRecords", len(records)).Msg("csv write finished")
	return nil
}

// WriteParquet writes records to a zstd compressed parquet file
func WriteParquet(records []*data.FactRecord, fn string) error {
	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create local file")
		return eris.Wrapf(err, "create %s", fn)
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, new(data.FactRecord), 4)
	if err != nil {
		log.Error().Err(err).Msg("parquet write failed")
		return eris.Wrap(err, "create parquet writer")
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, r := range records {
		if err := pw.Write(r); err != nil {
			log.Error().Err(err).
				Str("CIK", r.CIK).Str("Concept", r.Concept).Int32("FiscalYear", r.FiscalYear).
				Msg("parquet write failed for record")
			return eris.Wrap(err, "write parquet record")
		}
	}

	if err := pw.WriteStop(); err != nil {
		log.Error().Err(err).Msg("parquet write failed")
		return eris.Wrap(err, "finish parquet file")
	}

	log.Info().Int("NumRecords", len(records)).Msg("parquet write finished")
	return nil
}
