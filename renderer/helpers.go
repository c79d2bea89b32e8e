package renderer

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// table writes a markdown table. align holds one of 'l', 'r' or 'c' per column.
type table struct {
	w     io.Writer
	align string
}

func newTable(w io.Writer, align string, header ...string) *table {
	t := &table{w: w, align: align}
	t.row(header...)
	var sep []string
	for _, a := range align {
		switch a {
		case 'r':
			sep = append(sep, "---:")
		case 'c':
			sep = append(sep, ":---:")
		default:
			sep = append(sep, ":---")
		}
	}
	t.row(sep...)
	return t
}

func (t *table) row(cells ...string) {
	for i, c := range cells {
		cells[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	fmt.Fprintf(t.w, "| %s |\n", strings.Join(cells, " | "))
}
