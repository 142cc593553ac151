package reference

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ginjaninja78/bill-validator/internal/config"
	"github.com/ginjaninja78/bill-validator/internal/source"
	"github.com/ginjaninja78/bill-validator/internal/types"
)

// Header names of the work-code reference table, matched case-insensitively.
const (
	WorkCodeHeader = "Work code"
	WorkNameHeader = "Work"
)

// WorkPair is a (work code, work name) combination.
type WorkPair struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// NameConflict lists every code a work name was paired with and every row
// the name occurred on.
type NameConflict struct {
	Codes []string `json:"codes" yaml:"codes"`
	Rows  []int    `json:"rows" yaml:"rows"`
}

// WorkCodeDiagnostics are defects found in the reference file itself.
// They are reported, never fatal.
type WorkCodeDiagnostics struct {
	MissingCode           []int                   `json:"missing_code" yaml:"missing_code"`
	MissingName           []int                   `json:"missing_name" yaml:"missing_name"`
	NameWithMultipleCodes map[string]NameConflict `json:"name_with_multiple_codes" yaml:"name_with_multiple_codes"`
}

// Clean reports whether the reference file had no defects.
func (d WorkCodeDiagnostics) Clean() bool {
	return len(d.MissingCode) == 0 && len(d.MissingName) == 0 && len(d.NameWithMultipleCodes) == 0
}

// WorkCodeReference is the set of valid work pairs.
type WorkCodeReference struct {
	Source      string              `json:"source" yaml:"source"`
	Pairs       []WorkPair          `json:"pairs" yaml:"pairs"`
	Diagnostics WorkCodeDiagnostics `json:"diagnostics" yaml:"diagnostics"`

	set map[WorkPair]struct{}
}

// Contains reports whether (code, name) is a registered pair. Both sides
// are compared after trimming.
func (w *WorkCodeReference) Contains(code, name string) bool {
	if w == nil {
		return false
	}
	_, ok := w.set[WorkPair{Code: strings.TrimSpace(code), Name: strings.TrimSpace(name)}]
	return ok
}

// LoadWorkCodeReference reads the optional work-code table. An empty path
// or a missing file returns nil without error. A file lacking either
// required header is a ReferenceLoadError.
func LoadWorkCodeReference(path string, settings config.Table) (*WorkCodeReference, error) {
	if !source.Exists(path) {
		return nil, nil
	}

	table, err := source.Read(path, settings)
	if err != nil {
		return nil, &types.ReferenceLoadError{Kind: "work codes", Path: path, Err: err}
	}

	return BuildWorkCodeReference(table)
}

// BuildWorkCodeReference registers the pairs of an already parsed table
// and collects its diagnostics.
func BuildWorkCodeReference(table *types.Table) (*WorkCodeReference, error) {
	codeCol, ok := table.FindColumn(WorkCodeHeader)
	if !ok {
		return nil, &types.ReferenceLoadError{
			Kind: "work codes", Path: table.Source,
			Err: fmt.Errorf("%w: %q", types.ErrMissingHeader, WorkCodeHeader),
		}
	}
	nameCol, ok := table.FindColumn(WorkNameHeader)
	if !ok {
		return nil, &types.ReferenceLoadError{
			Kind: "work codes", Path: table.Source,
			Err: fmt.Errorf("%w: %q", types.ErrMissingHeader, WorkNameHeader),
		}
	}

	ref := &WorkCodeReference{
		Source: table.Source,
		set:    make(map[WorkPair]struct{}),
		Diagnostics: WorkCodeDiagnostics{
			MissingCode:           []int{},
			MissingName:           []int{},
			NameWithMultipleCodes: map[string]NameConflict{},
		},
	}

	codesByName := make(map[string]map[string]struct{})
	rowsByName := make(map[string][]int)
	var names []string

	for _, row := range table.Rows {
		code := table.Trimmed(row, codeCol)
		name := table.Trimmed(row, nameCol)

		if code == "" {
			ref.Diagnostics.MissingCode = append(ref.Diagnostics.MissingCode, row.Number)
		}
		if name == "" {
			ref.Diagnostics.MissingName = append(ref.Diagnostics.MissingName, row.Number)
		}
		if code == "" || name == "" {
			continue
		}

		pair := WorkPair{Code: code, Name: name}
		if _, dup := ref.set[pair]; !dup {
			ref.set[pair] = struct{}{}
			ref.Pairs = append(ref.Pairs, pair)
		}

		if _, seen := codesByName[name]; !seen {
			codesByName[name] = make(map[string]struct{})
			names = append(names, name)
		}
		codesByName[name][code] = struct{}{}
		rowsByName[name] = append(rowsByName[name], row.Number)
	}

	for _, name := range names {
		if len(codesByName[name]) < 2 {
			continue
		}
		codes := make([]string, 0, len(codesByName[name]))
		for c := range codesByName[name] {
			codes = append(codes, c)
		}
		sort.Strings(codes)
		ref.Diagnostics.NameWithMultipleCodes[name] = NameConflict{
			Codes: codes,
			Rows:  rowsByName[name],
		}
	}

	return ref, nil
}
