// Package artifact stores one result file per storm run, named
// storm_result_<run_id>.json, on local disk or in Cloud Storage.
package artifact

import (
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
)

const (
	filePrefix = "storm_result_"
	fileSuffix = ".json"
)

// ErrNotFound is returned by Get for an unknown run
var ErrNotFound = goerr.New("artifact not found")

// FileName returns the artifact name for runID
func FileName(runID model.RunID) string {
	return filePrefix + runID.String() + fileSuffix
}

// validRunID rejects IDs that cannot be a single path element
func validRunID(runID model.RunID) bool {
	id := runID.String()
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

// parseFileName extracts the run ID from an artifact name
func parseFileName(name string) (model.RunID, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	if id == "" {
		return "", false
	}
	return model.RunID(id), true
}

func sortRunIDs(ids []model.RunID) []model.RunID {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
