package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	getter "github.com/hashicorp/go-getter"
	"github.com/rs/zerolog/log"
)

// DefaultFetchTimeout bounds a remote download
const DefaultFetchTimeout = 120 * time.Second

// FetchDir downloads a directory from a remote source into dst
//
// Params:
//   - src: any go-getter source, e.g. "github.com/org/repo//chain_configs" or "./local/dir"
//   - dst: the directory to download into, it is replaced
//   - timeout: download deadline, DefaultFetchTimeout when zero
//
// Usage:
//   - Used to pull chain configs or hook deployment records kept in another repository
func FetchDir(src, dst string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("failed to clear %s: %w", dst, err)
	}

	client := getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeDir,
		Detectors: []getter.Detector{
			&getter.GitHubDetector{},
			&getter.GitDetector{},
			&getter.FileDetector{},
		},
		Getters: map[string]getter.Getter{
			"git":  &getter.GitGetter{},
			"file": &getter.FileGetter{Copy: true},
		},
	}
	log.Info().Str("src", src).Str("dst", dst).Msg("Downloading")

	if err := client.Get(); err != nil {
		return fmt.Errorf("failed to download %s: %w", src, err)
	}
	return nil
}

// ProcessDeployments reads hook deployment records from a directory.
//
// Every "<chain id>.json" file is read; other files are ignored. Only the chains
// listed in chainIDs are returned.
//
// Returns:
//   - map of chain id to its deployment record
func ProcessDeployments(dir string, chainIDs []uint64) (map[uint64]Deployment, error) {
	wanted := make(map[uint64]bool, len(chainIDs))
	for _, id := range chainIDs {
		wanted[id] = true
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read deployments: %w", err)
	}

	deployments := make(map[uint64]Deployment)
	for _, file := range files {
		name := file.Name()
		if file.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		id, err := strconv.ParseUint(strings.TrimSuffix(name, ".json"), 10, 64)
		if err != nil || !wanted[id] {
			continue
		}

		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		var deployment Deployment
		if err := json.Unmarshal(body, &deployment); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", name, err)
		}
		if deployment.ChainID != 0 && deployment.ChainID != id {
			return nil, fmt.Errorf("%s: records chain %d", name, deployment.ChainID)
		}
		deployment.ChainID = id
		deployments[id] = deployment
	}
	return deployments, nil
}
