package roster

import (
	"fmt"
	"io"
	"strings"
)

// FieldGroup lists the first names of the students enrolled in one field.
type FieldGroup struct {
	Field string   `json:"field"`
	Names []string `json:"names"`
}

// Census is the head count of a roster, grouped by field.
type Census struct {
	Total  int          `json:"total"`
	Groups []FieldGroup `json:"groups"`
}

// TakeCensus counts the roster and groups it by Field in first-seen order.
// Records without a field are counted in Total only.
func TakeCensus(r Roster) Census {
	c := Census{Total: len(r), Groups: []FieldGroup{}}
	index := make(map[string]int)

	for _, s := range r {
		if s.Field == "" {
			continue
		}
		i, ok := index[s.Field]
		if !ok {
			i = len(c.Groups)
			index[s.Field] = i
			c.Groups = append(c.Groups, FieldGroup{Field: s.Field})
		}
		c.Groups[i].Names = append(c.Groups[i].Names, s.FirstName)
	}
	return c
}

// WriteTo writes the census report to w, one line per entry:
//
//	Number of students: 10
//	Number of students in CS: 6. List: Johann, Arielle, Jonathan, Emmanuel, Guillaume, Katie
func (c Census) WriteTo(w io.Writer) (int64, error) {
	var written int64

	n, err := fmt.Fprintf(w, "Number of students: %d\n", c.Total)
	written += int64(n)
	if err != nil {
		return written, err
	}

	for _, g := range c.Groups {
		n, err := fmt.Fprintf(w, "Number of students in %s: %d. List: %s\n",
			g.Field, len(g.Names), strings.Join(g.Names, ", "))
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
