package portfolio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/epistemicgo/episteme/internal/appconfig"
	"github.com/epistemicgo/episteme/internal/bisim"
	"github.com/epistemicgo/episteme/internal/heuristic"
)

// configLine is the richer YAML encoding of one portfolio entry
// (SPEC_FULL.md §E Open Question): a list of these is accepted in
// addition to the plain `key=value,...`-per-line text form §4.4
// describes.
type configLine struct {
	Search           string `yaml:"search"`
	Heuristic        string `yaml:"heuristic"`
	Bisimulation     bool   `yaml:"bisimulation"`
	BisimulationType string `yaml:"bisimulation_type"`
	CheckVisited     bool   `yaml:"check_visited"`
}

// LoadConfigFile reads a portfolio configuration file, accepting either
// a YAML list of configLine entries or, if that fails to parse, the
// line-oriented `key=value,key=value` text form of §4.4.
func LoadConfigFile(path string) ([]appconfig.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("portfolio: opening config file: %w", err)
	}

	var lines []configLine
	if err := yaml.Unmarshal(raw, &lines); err == nil && len(lines) > 0 {
		return fromYAMLLines(lines)
	}
	return fromTextLines(raw)
}

func fromYAMLLines(lines []configLine) ([]appconfig.Config, error) {
	out := make([]appconfig.Config, 0, len(lines))
	for _, l := range lines {
		cfg := appconfig.Default()
		if l.Search != "" {
			cfg.Search = appconfig.SearchKind(l.Search)
		}
		if l.Heuristic != "" {
			k, err := heuristic.ParseKind(l.Heuristic)
			if err != nil {
				return nil, err
			}
			cfg.Heuristic = k
		}
		cfg.Bisimulation = l.Bisimulation
		if l.BisimulationType == "PT" {
			cfg.BisimType = bisim.PaigeTarjanType
		}
		cfg.CheckVisited = l.CheckVisited
		out = append(out, cfg)
	}
	return out, nil
}

func fromTextLines(raw []byte) ([]appconfig.Config, error) {
	var out []appconfig.Config
	scanner := bufio.NewScanner(strings.NewReader(string(raw)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cfg := appconfig.Default()
		for _, kv := range strings.Split(line, ",") {
			kv = strings.TrimSpace(kv)
			if kv == "" {
				continue
			}
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("portfolio: malformed entry %q in config line %q", kv, line)
			}
			key, val := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
			switch key {
			case "search":
				cfg.Search = appconfig.SearchKind(val)
			case "heuristic":
				k, err := heuristic.ParseKind(val)
				if err != nil {
					return nil, err
				}
				cfg.Heuristic = k
			case "bisimulation", "bis":
				b, err := strconv.ParseBool(val)
				if err != nil {
					return nil, fmt.Errorf("portfolio: bad bool %q for %q: %w", val, key, err)
				}
				cfg.Bisimulation = b
			case "bisimulation_type", "bis_type":
				if val == "PT" {
					cfg.BisimType = bisim.PaigeTarjanType
				}
			case "check_visited":
				b, err := strconv.ParseBool(val)
				if err != nil {
					return nil, fmt.Errorf("portfolio: bad bool %q for %q: %w", val, key, err)
				}
				cfg.CheckVisited = b
			default:
				return nil, fmt.Errorf("portfolio: unknown config key %q", key)
			}
		}
		out = append(out, cfg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("portfolio: reading config file: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("portfolio: config file had no usable configuration lines")
	}
	return out, nil
}
