package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/golangsnmp/passpersist"
	"github.com/golangsnmp/passpersist/mib"
)

// staticEntry is one fixed record in the config file.
type staticEntry struct {
	Type  string `toml:"type"`
	Value string `toml:"value"`
}

type fileConfig struct {
	Snapshot    string                 `toml:"snapshot"`
	IdleTimeout duration               `toml:"idle_timeout"`
	Static      map[string]staticEntry `toml:"static"`
}

// duration lets TOML carry Go duration strings ("90s", "5m").
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(b []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(b))
	return err
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// staticProvider serves the fixed records of the [static] config table.
// Entries are validated up front so a bad type tag fails at startup, not
// on the first request.
func staticProvider(static map[string]staticEntry) (passpersist.Provider, error) {
	records := make([]mib.Record, 0, len(static))
	for key, e := range static {
		typ, err := mib.ParseType(e.Type)
		if err != nil {
			return nil, fmt.Errorf("static record %s: %w", key, err)
		}
		rec, err := mib.NewRecordString(key, typ, e.Value)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return func(tree *mib.Tree) error {
		for _, rec := range records {
			tree.Push(rec)
		}
		return nil
	}, nil
}

// combine chains providers so a snapshot file and static records can
// populate the same tree.
func combine(providers []passpersist.Provider) passpersist.Provider {
	if len(providers) == 1 {
		return providers[0]
	}
	return func(tree *mib.Tree) error {
		for _, p := range providers {
			if err := p(tree); err != nil {
				return err
			}
		}
		return nil
	}
}
