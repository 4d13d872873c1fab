// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package dynobj

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffAttributes renders a unified diff from the configured attributes of o
// (declared values over type defaults) to its effective attributes. The
// result is empty when o has no override changing a value.
func DiffAttributes(o *DynamicObject) (string, error) {
	configured := o.DynamicType().Defaulted()
	for k, v := range o.DeclaredAttributes() {
		configured[k] = v
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(attributeLines(configured)),
		B:        difflib.SplitLines(attributeLines(o.Attributes())),
		FromFile: o.ToString() + " configured",
		ToFile:   o.ToString() + " effective",
		Context:  1,
	})
}

func attributeLines(d Dict) string {
	var sb strings.Builder
	for _, k := range d.SortedKeys() {
		sb.WriteString(k)
		sb.WriteString(" = ")
		sb.WriteString(ToCode(d[k]))
		sb.WriteString("\n")
	}
	return sb.String()
}
