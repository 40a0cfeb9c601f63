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
package backblaze

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"

	"github.com/kothar/go-backblaze"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var (
	ErrBucketNotFound = errors.New("bucket not found")
)

type Credentials struct {
	ApplicationID  string
	ApplicationKey string
}

// CredentialsFromConfig reads the backblaze.application_id and backblaze.application_key
// settings
func CredentialsFromConfig() Credentials {
	return Credentials{
		ApplicationID:  viper.GetString("backblaze.application_id"),
		ApplicationKey: viper.GetString("backblaze.application_key"),
	}
}

// ObjectName returns the key a local file is stored under inside dirname
func ObjectName(dirname, fn string) string {
	if dirname == "" {
		return filepath.Base(fn)
	}
	return path.Join(dirname, filepath.Base(fn))
}

// Upload copies the local file fn into bucketName under dirname and returns the object name
func Upload(ctx context.Context, creds Credentials, fn, bucketName, dirname string) (string, error) {
	logger := zerolog.Ctx(ctx).With().Str("BucketName", bucketName).Logger()

	b2, err := backblaze.NewB2(backblaze.Credentials{
		KeyID:          creds.ApplicationID,
		ApplicationKey: creds.ApplicationKey,
	})
	if err != nil {
		logger.Error().Err(err).Msg("authorize backblaze failed")
		return "", eris.Wrap(err, "authorize backblaze")
	}

	bucket, err := b2.Bucket(bucketName)
	if err != nil {
		logger.Error().Err(err).Msg("lookup bucket failed")
		return "", eris.Wrapf(err, "lookup bucket %s", bucketName)
	}
	if bucket == nil {
		logger.Error().Msg("bucket does not exist")
		return "", eris.Wrapf(ErrBucketNotFound, "%s", bucketName)
	}

	reader, err := os.Open(fn)
	if err != nil {
		return "", eris.Wrapf(err, "open %s", fn)
	}
	defer reader.Close()

	outName := ObjectName(dirname, fn)
	metadata := make(map[string]string)

	file, err := bucket.UploadFile(outName, metadata, reader)
	if err != nil {
		logger.Error().Err(err).Str("FileName", outName).Msg("save file to backblaze failed")
		return "", eris.Wrapf(err, "upload %s", outName)
	}

	logger.Info().Str("FileName", file.Name).Int64("Size", file.ContentLength).Str("ID", file.ID).Msg("uploaded file to backblaze")
	return outName, nil
}
