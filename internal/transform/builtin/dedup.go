package builtin

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"tabpipe/internal/table"
)

// Dedup collapses rows sharing a key built from the listed columns. Policy
// selects the survivor: "keep-first" keeps the earliest occurrence,
// "keep-last" (the default) the latest. Row order among survivors follows
// the original table order.
//
// Run Dedup after normalization and date parsing so key values are in their
// final, comparable form. Keys are hashed with xxh3 over a NUL-separated
// encoding of the cell values; a null cell encodes differently from any
// string, so null and "" never collide.
type Dedup struct {
	Keys   []string
	Policy string
}

func (Dedup) Name() string { return "dedup" }

func (d Dedup) Apply(t *table.Table) (*table.Table, error) {
	if len(d.Keys) == 0 {
		return t, nil
	}
	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = "keep-last"
	}
	if policy != "keep-first" && policy != "keep-last" {
		return nil, fmt.Errorf("unknown dedup policy %q", d.Policy)
	}

	cols := make([]*table.Column, 0, len(d.Keys))
	for _, name := range d.Keys {
		c, ok := t.Column(name)
		if !ok {
			return nil, table.ColumnNotFoundError{Column: name}
		}
		cols = append(cols, c)
	}

	winner := make(map[uint64]int, t.Len())
	var buf []byte
	for i := 0; i < t.Len(); i++ {
		buf = buf[:0]
		for _, c := range cols {
			buf = appendKeyCell(buf, c.Values[i])
			buf = append(buf, 0)
		}
		h := xxh3.Hash(buf)
		if _, seen := winner[h]; !seen || policy == "keep-last" {
			winner[h] = i
		}
	}

	keep := make([]bool, t.Len())
	for _, i := range winner {
		keep[i] = true
	}
	if err := t.Filter(keep); err != nil {
		return nil, err
	}
	return t, nil
}

// appendKeyCell encodes one cell into the key buffer. The leading tag byte
// separates nulls and types so distinct values cannot alias.
func appendKeyCell(buf []byte, v any) []byte {
	switch x := v.(type) {
	case nil:
		return append(buf, 'n')
	case string:
		buf = append(buf, 's')
		return append(buf, x...)
	case int64:
		buf = append(buf, 'i')
		return strconv.AppendInt(buf, x, 10)
	case float64:
		buf = append(buf, 'f')
		return strconv.AppendFloat(buf, x, 'g', -1, 64)
	case bool:
		if x {
			return append(buf, 't')
		}
		return append(buf, 'F')
	case time.Time:
		buf = append(buf, 'd')
		return strconv.AppendInt(buf, x.UnixNano(), 10)
	default:
		buf = append(buf, '?')
		return append(buf, fmt.Sprint(x)...)
	}
}
