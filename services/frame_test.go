package services

import (
	"strings"
	"testing"

	"gotest.tools/assert"
)

func TestReadFrame_NullTokensAndQuoting(t *testing.T) {
	in := "uniprot,protein_1_id,protein_2_id,comments\n" +
		"C1,P1,-,\"a, quoted\"\n" +
		"C2,,NA,none\n"

	f, err := ReadFrame(strings.NewReader(in))
	assert.NilError(t, err)
	assert.DeepEqual(t, f.Columns, []string{"uniprot", "protein_1_id", "protein_2_id", "comments"})
	assert.Equal(t, len(f.Records), 2)

	v, ok := f.Records[0].Get("comments")
	assert.Assert(t, ok)
	assert.Equal(t, v, "a, quoted")

	_, ok = f.Records[0].Get("protein_2_id")
	assert.Assert(t, !ok, "dash must read as null")
	_, ok = f.Records[1].Get("protein_1_id")
	assert.Assert(t, !ok, "empty cell must read as null")
	_, ok = f.Records[1].Get("protein_2_id")
	assert.Assert(t, !ok, "NA must read as null")

	assert.Equal(t, f.Records[0].Line, 2)
	assert.Equal(t, f.Records[1].Line, 3)
}

func TestReadFrame_HeaderNames(t *testing.T) {
	in := "\xEF\xBB\xBFuniprot, name ,,name\nC1,a,b,c\n"

	f, err := ReadFrame(strings.NewReader(in))
	assert.NilError(t, err)
	assert.DeepEqual(t, f.Columns, []string{"uniprot", "name", "Unnamed: 2", "name.1"})
	v, _ := f.Records[0].Get("name.1")
	assert.Equal(t, v, "c")
}

func TestReadFrame_ShortRowsPadWithNull(t *testing.T) {
	f, err := ReadFrame(strings.NewReader("a,b,c\n1\n"))
	assert.NilError(t, err)
	assert.Equal(t, len(f.Records[0].Values), 1)
}

func TestReadFrame_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty input", in: "", want: "missing header row"},
		{name: "too many fields", in: "a,b\n1,2,3\n", want: "expected 2 fields, saw 3"},
		{name: "bare quote", in: "a,b\n1,\"x\"y\n", want: "parse csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrame(strings.NewReader(tt.in))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestFrame_DropEmptyColumns(t *testing.T) {
	f, err := ReadFrame(strings.NewReader("uniprot,protein_4_id,comments\nC1,-,x\nC2,,-\n"))
	assert.NilError(t, err)

	dropped := f.DropEmptyColumns()
	assert.DeepEqual(t, dropped, []string{"protein_4_id"})
	assert.DeepEqual(t, f.Columns, []string{"uniprot", "comments"})
	assert.Assert(t, f.HasColumn("comments"))
	assert.Assert(t, !f.HasColumn("protein_4_id"))
}

func TestFrame_DropColumnsRemovesValues(t *testing.T) {
	f, err := ReadFrame(strings.NewReader("uniprot,Name_1,protein_1_id\nC1,foo,P1\n"))
	assert.NilError(t, err)

	f.DropColumns(isUnstoredComplexColumn)
	assert.DeepEqual(t, f.Columns, []string{"uniprot"})
	_, ok := f.Records[0].Get("Name_1")
	assert.Assert(t, !ok)
}

func TestParseFlag(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{in: "1", want: true},
		{in: "0", want: false},
		{in: "1.0", want: true},
		{in: "0.0", want: false},
		{in: "2", want: true},
		{in: "True", want: true},
		{in: "FALSE", want: false},
		{in: " true ", want: true},
		{in: "yes", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFlag(tt.in)
			if tt.wantErr {
				assert.Assert(t, err != nil)
				return
			}
			assert.NilError(t, err)
			assert.Equal(t, got, tt.want)
		})
	}
}
