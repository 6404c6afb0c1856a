package batch

import (
	"fmt"
	"math"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const trialsKey = "trials"

// LoadTrials reads the trials list of a YAML file. JSON is a subset of
// YAML, so .json files load through the same parser.
func LoadTrials(path string) ([]Record, error) {
	if path == "" {
		return nil, ErrMissingFile
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadTrials, path, err)
	}
	if !k.Exists(trialsKey) {
		return nil, fmt.Errorf("%w: %s: missing %q list", ErrLoadTrials, path, trialsKey)
	}

	var records []Record
	if err := k.UnmarshalWithConf(trialsKey, &records, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadTrials, path, err)
	}
	return records, nil
}

// Trial converts r into the values accepted by meta.Analysis.AddTrial.
// Range checks are left to the analysis; only shape is checked here.
func (r Record) Trial() (sampleSize int, effectSize, pValue float64, err error) {
	switch {
	case r.SampleSize == nil:
		return 0, 0, 0, fmt.Errorf("%w: missing sample_size", ErrInvalidRecord)
	case r.EffectSize == nil:
		return 0, 0, 0, fmt.Errorf("%w: missing effect_size", ErrInvalidRecord)
	case r.PValue == nil:
		return 0, 0, 0, fmt.Errorf("%w: missing p_value", ErrInvalidRecord)
	}
	n := *r.SampleSize
	if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
		return 0, 0, 0, fmt.Errorf("%w: sample_size must be a whole number, got %v", ErrInvalidRecord, n)
	}
	return int(n), *r.EffectSize, *r.PValue, nil
}
