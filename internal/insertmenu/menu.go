package insertmenu

import (
	"slices"
	"sort"
	"strings"

	"github.com/arbor-lang/arbor/internal/genie"
	"github.com/arbor-lang/arbor/internal/mutation"
	"github.com/arbor-lang/arbor/internal/types"
)

// Group is a named run of options, sorted by sort key.
type Group struct {
	Name    string
	Options []Option
}

func (g Group) earliestSortKey() string {
	key := g.Options[0].SortKey
	for _, o := range g.Options[1:] {
		if o.SortKey < key {
			key = o.SortKey
		}
	}
	return key
}

// Menu is the search state for one insertion point: the filter text and the
// selected option.
type Menu struct {
	input    string
	selected int
	point    mutation.InsertionPoint
}

// NewMenu opens a menu at point. Editing points have no menu.
func NewMenu(point mutation.InsertionPoint) (*Menu, bool) {
	if point.Kind == mutation.KindEditing {
		return nil, false
	}
	return &Menu{point: point}, true
}

// InsertionPoint returns where the selected option would be inserted.
func (m *Menu) InsertionPoint() mutation.InsertionPoint { return m.point }

// Input returns the filter text.
func (m *Menu) Input() string { return m.input }

// SetSearch changes the filter text. A new text resets the selection.
func (m *Menu) SetSearch(input string) {
	if input == m.input {
		return
	}
	m.input = input
	m.selected = 0
}

// SelectNext moves the selection down; it wraps past the last option.
func (m *Menu) SelectNext() { m.selected++ }

// SelectPrev moves the selection up; it wraps past the first option.
func (m *Menu) SelectPrev() { m.selected-- }

// SearchParams derives the search context for the current filter text.
func (m *Menu) SearchParams(g *genie.Genie, env types.Env) (SearchParams, error) {
	return NewSearchParams(m.input, m.point, g, env)
}

// GroupedOptions lists the options for the current search, grouped and
// ranked, with the selected one flagged.
func (m *Menu) GroupedOptions(g *genie.Genie, env types.Env) ([]Group, error) {
	p, err := m.SearchParams(g, env)
	if err != nil {
		return nil, err
	}
	groups := Rank(ListOptions(p, g, env))

	idx := SelectedIndex(m.selected, countOptions(groups))
	for gi := range groups {
		if idx < len(groups[gi].Options) {
			groups[gi].Options[idx].Selected = true
			break
		}
		idx -= len(groups[gi].Options)
	}
	return groups, nil
}

// SelectedOption returns the option that inserting would use.
func (m *Menu) SelectedOption(g *genie.Genie, env types.Env) (Option, bool, error) {
	groups, err := m.GroupedOptions(g, env)
	if err != nil {
		return Option{}, false, err
	}
	for _, grp := range groups {
		for _, o := range grp.Options {
			if o.Selected {
				return o, true, nil
			}
		}
	}
	return Option{}, false, nil
}

// Rank groups options by group name, sorts each group by sort key, and
// orders the groups by their smallest sort key. Sorting is stable, so equal
// keys keep generator order.
func Rank(options []Option) []Group {
	byName := make(map[string][]Option)
	var names []string
	for _, o := range options {
		if _, ok := byName[o.Group]; !ok {
			names = append(names, o.Group)
		}
		byName[o.Group] = append(byName[o.Group], o)
	}
	sort.Strings(names)

	groups := make([]Group, 0, len(names))
	for _, name := range names {
		opts := byName[name]
		slices.SortStableFunc(opts, func(a, b Option) int { return strings.Compare(a.SortKey, b.SortKey) })
		groups = append(groups, Group{Name: name, Options: opts})
	}
	slices.SortStableFunc(groups, func(a, b Group) int {
		return strings.Compare(a.earliestSortKey(), b.earliestSortKey())
	})
	return groups
}

// SelectedIndex maps a selection counter onto n options, wrapping in both
// directions.
func SelectedIndex(selected, n int) int {
	if n == 0 {
		return 0
	}
	idx := selected % n
	if idx < 0 {
		idx += n
	}
	return idx
}

func countOptions(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Options)
	}
	return n
}
