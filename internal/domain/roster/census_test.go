package roster

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakeCensus_GroupsInFirstSeenOrder(t *testing.T) {
	r := Roster{
		{ID: 1, FirstName: "Johann", Field: "CS"},
		{ID: 2, FirstName: "Guillaume", Field: "SWE"},
		{ID: 3, FirstName: "Arielle", Field: "CS"},
		{ID: 4, FirstName: "Nobody"},
	}

	c := TakeCensus(r)

	assert.Equal(t, 4, c.Total)
	require.Len(t, c.Groups, 2)
	assert.Equal(t, FieldGroup{Field: "CS", Names: []string{"Johann", "Arielle"}}, c.Groups[0])
	assert.Equal(t, FieldGroup{Field: "SWE", Names: []string{"Guillaume"}}, c.Groups[1])
}

func TestCensus_WriteTo(t *testing.T) {
	c := TakeCensus(Roster{
		{ID: 1, FirstName: "Johann", Field: "CS"},
		{ID: 2, FirstName: "Arielle", Field: "CS"},
		{ID: 3, FirstName: "Guillaume", Field: "SWE"},
	})

	var buf bytes.Buffer
	n, err := c.WriteTo(&buf)

	require.NoError(t, err)
	want := "Number of students: 3\n" +
		"Number of students in CS: 2. List: Johann, Arielle\n" +
		"Number of students in SWE: 1. List: Guillaume\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, int64(len(want)), n)
}

func TestCensus_WriteToEmpty(t *testing.T) {
	var buf bytes.Buffer
	_, err := TakeCensus(nil).WriteTo(&buf)

	require.NoError(t, err)
	assert.Equal(t, "Number of students: 0\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("sink closed") }

func TestCensus_WriteToPropagatesSinkError(t *testing.T) {
	_, err := TakeCensus(nil).WriteTo(failingWriter{})
	assert.EqualError(t, err, "sink closed")
}
