package variation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"go-variations/debug"
	"go-variations/value"
)

// Format selects the store encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// PoolRecord is the persisted form of one pool
type PoolRecord struct {
	SymbolID   string   `json:"symbolId" yaml:"symbolId"`
	Variations []Record `json:"variations" yaml:"variations"`
}

// Record is the persisted form of one variation
type Record struct {
	ActivationIndex *int              `json:"activationIndex,omitempty" yaml:"activationIndex,omitempty"`
	GridCell        CellRecord        `json:"gridCell" yaml:"gridCell"`
	Parameters      []ParameterRecord `json:"parameters" yaml:"parameters"`
}

type CellRecord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

type ParameterRecord struct {
	InstancePath []string  `json:"instancePath" yaml:"instancePath"`
	InputID      string    `json:"inputId" yaml:"inputId"`
	Type         string    `json:"type" yaml:"type"`
	Value        []float64 `json:"value" yaml:"value,flow"`
	Name         string    `json:"name,omitempty" yaml:"name,omitempty"`
	Strength     float64   `json:"strength,omitempty" yaml:"strength,omitempty"`
}

// Store keeps one file per composition symbol in Dir
type Store struct {
	Dir    string
	Format Format
}

// DefaultStoreDir returns ~/.config/go-variations/variations
func DefaultStoreDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-variations", "variations"), nil
}

func NewStore(dir string, format Format) *Store {
	if format != FormatYAML {
		format = FormatJSON
	}
	return &Store{Dir: dir, Format: format}
}

// Path returns the file used for a symbol
func (s *Store) Path(symbolID uuid.UUID) string {
	return filepath.Join(s.Dir, symbolID.String()+"."+string(s.Format))
}

// Save writes all variations of the pool
func (s *Store) Save(p *Pool) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}

	data, err := s.marshal(Records(p))
	if err != nil {
		return fmt.Errorf("encode variations for %s: %w", p.SymbolID, err)
	}
	return os.WriteFile(s.Path(p.SymbolID), data, 0644)
}

// Load reads the symbol's file into the pool and returns the number of
// variations added. A missing file is not an error.
func (s *Store) Load(p *Pool) (int, error) {
	data, err := os.ReadFile(s.Path(p.SymbolID))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	var rec PoolRecord
	if err := s.unmarshal(data, &rec); err != nil {
		return 0, fmt.Errorf("decode %s: %w", s.Path(p.SymbolID), err)
	}
	return Restore(p, rec), nil
}

func (s *Store) marshal(rec PoolRecord) ([]byte, error) {
	if s.Format == FormatYAML {
		return yaml.Marshal(rec)
	}
	return json.MarshalIndent(rec, "", "  ")
}

func (s *Store) unmarshal(data []byte, rec *PoolRecord) error {
	if s.Format == FormatYAML {
		return yaml.Unmarshal(data, rec)
	}
	return json.Unmarshal(data, rec)
}

// Records converts a pool to its persisted form
func Records(p *Pool) PoolRecord {
	rec := PoolRecord{SymbolID: p.SymbolID.String()}
	for _, v := range p.variations {
		r := Record{GridCell: CellRecord{X: v.GridCell.X, Y: v.GridCell.Y}}
		if idx, ok := v.ActivationIndex(); ok {
			r.ActivationIndex = &idx
		}
		for _, param := range v.params {
			path := make([]string, len(param.Ref.InstancePath))
			for i, id := range param.Ref.InstancePath {
				path[i] = id.String()
			}
			pr := ParameterRecord{
				InstancePath: path,
				InputID:      param.Ref.InputID.String(),
				Type:         param.Ref.Kind.String(),
				Value:        v.values[param].Components(),
				Name:         param.Label(),
			}
			if param.Strength != 1 {
				pr.Strength = param.Strength
			}
			r.Parameters = append(r.Parameters, pr)
		}
		rec.Variations = append(rec.Variations, r)
	}
	return rec
}

// Restore adds the recorded variations to the pool. Parameters are tracked
// on the fly; unreadable parameters and taken indices are skipped with a
// warning. Returns the number of variations added.
func Restore(p *Pool, rec PoolRecord) int {
	added := 0
	for _, r := range rec.Variations {
		var params []*Parameter
		values := make(map[*Parameter]value.Value)
		for _, pr := range r.Parameters {
			ref, val, err := parseParameter(pr)
			if err != nil {
				debug.Warn("store", "skip parameter %s: %v", pr.Name, err)
				continue
			}
			param, ok := p.Parameter(ref)
			if !ok {
				original := val
				if slot, err := p.graph.Resolve(ref.InstancePath, ref.InputID); err == nil && slot.Kind() == ref.Kind {
					original = slot.Value()
				}
				param = p.trackRef(ref, original)
				param.InputName = pr.Name
				if pr.Strength != 0 {
					param.Strength = pr.Strength
				}
			}
			params = append(params, param)
			values[param] = val
		}
		if len(params) == 0 {
			continue
		}

		v := newVariation(p.graph, params, values)
		v.GridCell = GridCell{X: r.GridCell.X, Y: r.GridCell.Y}
		v.ThumbnailNeedsUpdate = true
		p.variations = append(p.variations, v)
		if r.ActivationIndex != nil {
			if err := p.SetActivationIndex(v, *r.ActivationIndex); err != nil {
				debug.Warn("store", "variation %s left unindexed: %v", v.ID, err)
			}
		}
		added++
	}
	return added
}

func parseParameter(pr ParameterRecord) (ParameterRef, value.Value, error) {
	var ref ParameterRef
	kind, err := value.ParseKind(pr.Type)
	if err != nil {
		return ref, nil, err
	}
	val, err := value.FromComponents(kind, pr.Value)
	if err != nil {
		return ref, nil, err
	}
	input, err := uuid.Parse(pr.InputID)
	if err != nil {
		return ref, nil, fmt.Errorf("input id: %w", err)
	}
	path := make([]uuid.UUID, len(pr.InstancePath))
	for i, s := range pr.InstancePath {
		if path[i], err = uuid.Parse(s); err != nil {
			return ref, nil, fmt.Errorf("instance path: %w", err)
		}
	}
	return ParameterRef{InstancePath: path, InputID: input, Kind: kind}, val, nil
}
