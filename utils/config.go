package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// MaxHiddenLayers is the largest number of hidden layers a configuration may declare.
const MaxHiddenLayers = 10

// NetConfig holds the shape of a network.
type NetConfig struct {
	InputSize   int
	HiddenSizes []int
	OutputSize  int
}

// DefaultNetConfig returns the MNIST shape: 784 inputs, one hidden layer of
// 10 neurons and 10 outputs.
func DefaultNetConfig() NetConfig {
	return NetConfig{
		InputSize:   784,
		HiddenSizes: []int{10},
		OutputSize:  10,
	}
}

// ParseArchitecture parses architecture string into slice of integers
func ParseArchitecture(archStr string) ([]int, error) {
	archParts := strings.Fields(archStr)
	arch := make([]int, len(archParts))
	for i, s := range archParts {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		arch[i] = n
	}
	return arch, nil
}

// FromArchitecture builds a NetConfig from a full layer list such as
// "784 10 10": the first entry is the input size, the last the output size.
func FromArchitecture(archStr string) (NetConfig, error) {
	arch, err := ParseArchitecture(archStr)
	if err != nil {
		return NetConfig{}, fmt.Errorf("parsing architecture: %w", err)
	}
	if len(arch) < 2 {
		return NetConfig{}, fmt.Errorf("architecture must have at least 2 layers (input and output)")
	}
	cfg := NetConfig{
		InputSize:   arch[0],
		HiddenSizes: append([]int{}, arch[1:len(arch)-1]...),
		OutputSize:  arch[len(arch)-1],
	}
	return cfg, ValidateNetConfig(&cfg)
}

// ParseArgs reads the positional form `input numHidden h1,h2,... output`.
func ParseArgs(args []string) (NetConfig, error) {
	if len(args) < 4 {
		return NetConfig{}, fmt.Errorf("expected 4 arguments (input numHidden sizes output), got %d", len(args))
	}
	input, err := strconv.Atoi(args[0])
	if err != nil {
		return NetConfig{}, fmt.Errorf("parsing input size: %w", err)
	}
	numHidden, err := strconv.Atoi(args[1])
	if err != nil {
		return NetConfig{}, fmt.Errorf("parsing number of hidden layers: %w", err)
	}
	if numHidden > MaxHiddenLayers {
		return NetConfig{}, fmt.Errorf("number of hidden layers exceeds the maximum allowed (%d)", MaxHiddenLayers)
	}
	hidden, err := parseSizes(args[2])
	if err != nil {
		return NetConfig{}, fmt.Errorf("parsing hidden sizes: %w", err)
	}
	if len(hidden) != numHidden {
		return NetConfig{}, fmt.Errorf("declared %d hidden layers but got %d sizes", numHidden, len(hidden))
	}
	output, err := strconv.Atoi(args[3])
	if err != nil {
		return NetConfig{}, fmt.Errorf("parsing output size: %w", err)
	}

	cfg := NetConfig{InputSize: input, HiddenSizes: hidden, OutputSize: output}
	return cfg, ValidateNetConfig(&cfg)
}

// LoadConfigFile opens path and parses it with ParseConfigFile.
func LoadConfigFile(path string) (NetConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return NetConfig{}, fmt.Errorf("could not open config file %s: %w", path, err)
	}
	defer f.Close()
	return ParseConfigFile(f)
}

// ParseConfigFile reads `key = value` lines. Recognised keys are
// input_size, hidden_sizes (comma separated), num_hidden_layers and
// output_size. Keys that are absent keep their default value; unknown keys
// are logged and skipped. Blank lines and lines starting with # are ignored.
func ParseConfigFile(r io.Reader) (NetConfig, error) {
	cfg := DefaultNetConfig()
	numHidden := -1

	scanner := bufio.NewScanner(r)
	var lineNum int
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return NetConfig{}, fmt.Errorf("line %d: expected key = value, got %q", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		var err error
		switch key {
		case "input_size":
			cfg.InputSize, err = strconv.Atoi(value)
		case "hidden_sizes":
			cfg.HiddenSizes, err = parseSizes(value)
			if err == nil && len(cfg.HiddenSizes) > MaxHiddenLayers {
				err = fmt.Errorf("config defines more hidden layers than the maximum allowed (%d)", MaxHiddenLayers)
			}
		case "num_hidden_layers":
			numHidden, err = strconv.Atoi(value)
		case "output_size":
			cfg.OutputSize, err = strconv.Atoi(value)
		default:
			log.Warn().Str("key", key).Int("line", lineNum).Msg("unknown key in config file")
		}
		if err != nil {
			return NetConfig{}, fmt.Errorf("line %d (%s): %w", lineNum, key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return NetConfig{}, fmt.Errorf("reading config: %w", err)
	}

	if numHidden >= 0 && numHidden != len(cfg.HiddenSizes) {
		return NetConfig{}, fmt.Errorf("num_hidden_layers is %d but hidden_sizes lists %d layers", numHidden, len(cfg.HiddenSizes))
	}
	return cfg, ValidateNetConfig(&cfg)
}

func parseSizes(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []int{}, nil
	}
	parts := strings.Split(s, ",")
	sizes := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		sizes[i] = n
	}
	return sizes, nil
}

// ValidateNetConfig validates a network shape
func ValidateNetConfig(config *NetConfig) error {
	if config.InputSize <= 0 {
		return fmt.Errorf("input size must be positive")
	}
	if config.OutputSize <= 0 {
		return fmt.Errorf("output size must be positive")
	}
	if len(config.HiddenSizes) > MaxHiddenLayers {
		return fmt.Errorf("at most %d hidden layers are supported", MaxHiddenLayers)
	}
	for i, h := range config.HiddenSizes {
		if h <= 0 {
			return fmt.Errorf("hidden layer %d size must be positive", i)
		}
	}
	return nil
}
