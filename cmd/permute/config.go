package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/distperm/paraperm/bench"
)

// transportConfig names which transport.Group binding to dial and the
// peer address table it needs, mirroring fabbench's db config block
// ("name" plus backend-specific options). "inproc" is handled by
// calling inproc.NewWorld directly; any other name is looked up with
// transport.Dial, which knows "tcp" through transport/tcp's
// self-registration.
type transportConfig struct {
	Name  string   `json:"name"`
	Peers []string `json:"peers"`
}

// runConfig is the schema "permute run" decodes.
type runConfig struct {
	N           uint64          `json:"n"`
	Rank        int             `json:"rank"`
	Size        int             `json:"size"`
	SeedBase    int64           `json:"seedBase"`
	Transport   transportConfig `json:"transport"`
	Coordinator string          `json:"coordinator"`
}

func loadRunConfig(path string) (*runConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open config: %v", err)
	}
	defer f.Close()
	var cfg runConfig
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %v", err)
	}
	return &cfg, nil
}

// benchConfig is the schema "permute bench" decodes.
type benchConfig struct {
	Bench bench.Config `json:"bench"`
}

func loadBenchConfig(path string) (*benchConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open config: %v", err)
	}
	defer f.Close()
	var cfg benchConfig
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %v", err)
	}
	return &cfg, nil
}
