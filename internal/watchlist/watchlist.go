// Package watchlist loads the set of tickers to sync from a YAML file.
package watchlist

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Entry is one watched security.
type Entry struct {
	Ticker string `yaml:"ticker"`
	Note   string `yaml:"note,omitempty"`
}

// Load reads tickers from a YAML watchlist file. Tickers are upper-cased
// and de-duplicated, preserving first-seen order.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "watchlist: read %s", path)
	}

	// The YAML has a top-level "watchlist" key.
	var wrapper struct {
		Watchlist []Entry `yaml:"watchlist"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrapf(err, "watchlist: parse %s", path)
	}

	seen := make(map[string]bool, len(wrapper.Watchlist))
	var tickers []string
	for _, e := range wrapper.Watchlist {
		t := strings.ToUpper(strings.TrimSpace(e.Ticker))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tickers = append(tickers, t)
	}
	if len(tickers) == 0 {
		return nil, eris.Errorf("watchlist: no tickers in %s", path)
	}
	return tickers, nil
}
