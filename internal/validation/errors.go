package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Re-Quant/calc/internal/risk"
)

// Code classifies a validation failure.
type Code string

const (
	CodeRequired       Code = "required"
	CodeNumber         Code = "number"
	CodeMin            Code = "min"
	CodeMax            Code = "max"
	CodeTradeType      Code = "tradeType"
	CodeOrdering       Code = "ordering"
	CodeSumVolumeParts Code = "sumVolumeParts"
)

// ErrorInfo describes what is wrong with a single field.
type ErrorInfo struct {
	Message string `json:"message" yaml:"message"`
	Code    Code   `json:"code" yaml:"code"`
	Actual  any    `json:"actual,omitempty" yaml:"actual,omitempty"`
}

// Errors maps a field path, such as "leverage.max" or "stops[1].price", to
// the problem found there. A nil Errors means the arguments are valid.
type Errors map[string]ErrorInfo

func (e Errors) Error() string {
	paths := e.Paths()
	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		parts = append(parts, fmt.Sprintf("%s: %s", p, e[p].Message))
	}
	return "invalid trade arguments: " + strings.Join(parts, "; ")
}

// Is lets errors.Is match Errors against the risk failure classes.
func (e Errors) Is(target error) bool {
	for _, info := range e {
		if info.Code.class() == target {
			return true
		}
	}
	return false
}

// Paths returns the failing field paths in sorted order.
func (e Errors) Paths() []string {
	paths := make([]string, 0, len(e))
	for p := range e {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (e Errors) add(path string, info ErrorInfo) {
	if _, exists := e[path]; exists {
		return
	}
	e[path] = info
}

func (c Code) class() error {
	switch c {
	case CodeRequired:
		return risk.ErrMissingArgument
	case CodeOrdering, CodeSumVolumeParts:
		return risk.ErrInconsistentLegConfiguration
	}
	return risk.ErrOutOfRangeArgument
}
