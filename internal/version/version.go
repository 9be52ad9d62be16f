/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package version

import (
	"bytes"
	"runtime"
	"strconv"
	"time"
)

const (
	DevelopmentVersion = "dev"
)

// Set at build time via -ldflags "-X ...".
var (
	ProductVersion = DevelopmentVersion
	CommitHash     = ""
	BuildTimestamp = ""
)

type BuildTime struct {
	time.Time
}

func (t BuildTime) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}

	return []byte("\"" + t.Time.UTC().Format(time.RFC3339) + "\""), nil
}

// UnmarshalJSON accepts a quoted RFC 3339 timestamp or null.
func (t *BuildTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	parsed, err := time.Parse("\""+time.RFC3339+"\"", string(data))
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

type VersionOutput struct {
	Version    string     `json:"version"`
	CommitHash string     `json:"commitHash,omitempty"`
	BuildTime  *BuildTime `json:"buildTimestamp,omitempty"`
	GoVersion  string     `json:"goVersion"`
	Platform   string     `json:"platform"`
}

func Version() VersionOutput {
	output := VersionOutput{
		Version:    ProductVersion,
		CommitHash: CommitHash,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
	if output.Version == "" {
		output.Version = DevelopmentVersion
	}

	// The timestamp is either Unix seconds or RFC 3339.
	if BuildTimestamp != "" {
		if seconds, err := strconv.ParseInt(BuildTimestamp, 10, 64); err == nil {
			output.BuildTime = &BuildTime{time.Unix(seconds, 0)}
		} else if parsed, parseErr := time.Parse(time.RFC3339, BuildTimestamp); parseErr == nil {
			output.BuildTime = &BuildTime{parsed}
		}
	}

	return output
}
