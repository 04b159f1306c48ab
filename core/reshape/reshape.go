package reshape

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/edlowe/flatsheet/core/table"
)

var (
	sectionRE    = regexp.MustCompile(`^section_(.+)_([0-9]+)$`)
	subSectionRE = regexp.MustCompile(`^sub_section_(.+)_([0-9]+)[._]([0-9]+)$`)
)

// Output column names added by the reshaper.
const (
	SectionNumberColumn    = "section_number"
	SubSectionNumberColumn = "sub_section_number"
)

type subKey struct {
	major, minor int
}

// Reshape converts one wide row (ordered columns plus their values) into a
// long table. Sections are emitted in ascending numeric order; within a
// section, sub-sections follow ascending (major, minor) order, each carrying
// the section's fields. A section without sub-sections emits one row whose
// sub-section cells are all null. When no column matches either hierarchy
// pattern the result has zero rows — the caller's signal to skip writing
// output entirely.
func Reshape(columns []string, row map[string]string) *table.Table {
	sections := make(map[int]map[string]string)
	subs := make(map[int]map[subKey]map[string]string)

	var globals []string
	var secFields, subFields []string
	secFieldSeen := make(map[string]bool)
	subFieldSeen := make(map[string]bool)
	secNums := make(map[int]bool)

	for _, col := range columns {
		if m := sectionRE.FindStringSubmatch(col); m != nil {
			field := m[1]
			n, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			if sections[n] == nil {
				sections[n] = make(map[string]string)
			}
			sections[n][field] = row[col]
			secNums[n] = true
			if !secFieldSeen[field] {
				secFieldSeen[field] = true
				secFields = append(secFields, field)
			}
			continue
		}

		if m := subSectionRE.FindStringSubmatch(col); m != nil {
			field := m[1]
			major, errMaj := strconv.Atoi(m[2])
			minor, errMin := strconv.Atoi(m[3])
			if errMaj != nil || errMin != nil {
				continue
			}
			if subs[major] == nil {
				subs[major] = make(map[subKey]map[string]string)
			}
			k := subKey{major, minor}
			if subs[major][k] == nil {
				subs[major][k] = make(map[string]string)
			}
			subs[major][k][field] = row[col]
			// Sub-section columns without a matching section still imply the
			// section exists; it is synthesised with only global fields.
			secNums[major] = true
			if !subFieldSeen[field] {
				subFieldSeen[field] = true
				subFields = append(subFields, field)
			}
			continue
		}

		globals = append(globals, col)
	}

	outColumns := make([]string, 0, len(globals)+len(secFields)+len(subFields)+2)
	outColumns = append(outColumns, globals...)
	outColumns = append(outColumns, SectionNumberColumn)
	for _, f := range secFields {
		outColumns = append(outColumns, "section_"+f)
	}
	outColumns = append(outColumns, SubSectionNumberColumn)
	for _, f := range subFields {
		outColumns = append(outColumns, "sub_section_"+f)
	}

	out := table.New(outColumns)
	if len(secNums) == 0 {
		return out
	}

	ordered := make([]int, 0, len(secNums))
	for n := range secNums {
		ordered = append(ordered, n)
	}
	sort.Ints(ordered)

	for _, n := range ordered {
		base := make(map[string]table.Cell, len(outColumns))
		for _, g := range globals {
			base[g] = table.String(row[g])
		}
		base[SectionNumberColumn] = table.String(strconv.Itoa(n))
		for _, f := range secFields {
			if v, ok := sections[n][f]; ok {
				base["section_"+f] = table.String(v)
			}
		}

		subMap := subs[n]
		if len(subMap) == 0 {
			out.AppendRow(base)
			continue
		}

		subKeys := make([]subKey, 0, len(subMap))
		for k := range subMap {
			subKeys = append(subKeys, k)
		}
		sort.Slice(subKeys, func(i, j int) bool {
			if subKeys[i].major != subKeys[j].major {
				return subKeys[i].major < subKeys[j].major
			}
			return subKeys[i].minor < subKeys[j].minor
		})

		for _, k := range subKeys {
			cells := make(map[string]table.Cell, len(outColumns))
			for col, c := range base {
				cells[col] = c
			}
			cells[SubSectionNumberColumn] = table.String(
				strconv.Itoa(k.major) + "." + strconv.Itoa(k.minor))
			for _, f := range subFields {
				if v, ok := subMap[k][f]; ok {
					cells["sub_section_"+f] = table.String(v)
				}
			}
			out.AppendRow(cells)
		}
	}

	return out
}
