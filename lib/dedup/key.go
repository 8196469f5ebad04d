// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package dedup

import (
	"fmt"
	"strconv"
	"strings"
)

// RunKey identifies one workflow run for deduplication. Its string
// form, "<repository>:<pipeline id>:<run id>", is what is persisted,
// so it must not change between releases.
type RunKey struct {
	Repository string
	PipelineID int64
	RunID      int64
}

// String returns the persisted form, e.g. "acme/api:1234:987654".
func (key RunKey) String() string {
	return key.Repository + ":" + strconv.FormatInt(key.PipelineID, 10) + ":" + strconv.FormatInt(key.RunID, 10)
}

// ParseRunKey parses the persisted form. The two numeric fields are
// taken from the right, so the repository part is everything before
// them.
func ParseRunKey(text string) (RunKey, error) {
	runSeparator := strings.LastIndexByte(text, ':')
	if runSeparator < 0 {
		return RunKey{}, fmt.Errorf("run key %q: missing run id", text)
	}
	pipelineSeparator := strings.LastIndexByte(text[:runSeparator], ':')
	if pipelineSeparator <= 0 {
		return RunKey{}, fmt.Errorf("run key %q: missing repository or pipeline id", text)
	}

	pipelineID, err := strconv.ParseInt(text[pipelineSeparator+1:runSeparator], 10, 64)
	if err != nil {
		return RunKey{}, fmt.Errorf("run key %q: pipeline id: %w", text, err)
	}
	runID, err := strconv.ParseInt(text[runSeparator+1:], 10, 64)
	if err != nil {
		return RunKey{}, fmt.Errorf("run key %q: run id: %w", text, err)
	}
	return RunKey{Repository: text[:pipelineSeparator], PipelineID: pipelineID, RunID: runID}, nil
}
