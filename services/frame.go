package services

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// nullTokens werden beim Einlesen als fehlender Wert behandelt.
var nullTokens = map[string]struct{}{
	"":     {},
	"-":    {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"NULL": {},
	"null": {},
	"None": {},
	"#N/A": {},
}

// Record ist eine Datenzeile. Fehlende Schlüssel in Values bedeuten null.
type Record struct {
	Line   int
	Values map[string]string
}

// Get liefert den Wert der Spalte und ob er nicht null ist.
func (r Record) Get(col string) (string, bool) {
	v, ok := r.Values[col]
	return v, ok
}

// Frame ist eine eingelesene CSV-Tabelle.
type Frame struct {
	Columns []string
	Records []Record
}

// ReadFrame liest eine kommagetrennte CSV mit Kopfzeile.
// Leere Kopfzellen heißen "Unnamed: <index>", doppelte Namen erhalten ".1", ".2" usw.
func ReadFrame(r io.Reader) (*Frame, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse csv: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("parse csv header: %w", err)
	}
	columns := headerNames(header)

	f := &Frame{Columns: columns}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) > len(columns) {
			return nil, fmt.Errorf("parse csv: line %d: expected %d fields, saw %d", line, len(columns), len(rec))
		}
		values := make(map[string]string, len(rec))
		for i, v := range rec {
			if isNull(v) {
				continue
			}
			values[columns[i]] = v
		}
		f.Records = append(f.Records, Record{Line: line, Values: values})
	}
	return f, nil
}

func headerNames(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		name := normalizeKey(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n)
		} else {
			seen[name] = 1
		}
		out[i] = name
	}
	return out
}

func isNull(v string) bool {
	_, ok := nullTokens[v]
	return ok
}

// normalizeKey vereinheitlicht Spaltennamen und externe Schlüssel (NFC, ohne Randleerzeichen).
func normalizeKey(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// HasColumn meldet, ob die Spalte in der Kopfzeile vorkommt.
func (f *Frame) HasColumn(name string) bool {
	for _, c := range f.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// DropEmptyColumns entfernt Spalten, die in keiner Zeile einen Wert haben.
func (f *Frame) DropEmptyColumns() []string {
	return f.DropColumns(func(col string) bool {
		for _, r := range f.Records {
			if _, ok := r.Values[col]; ok {
				return false
			}
		}
		return true
	})
}

// DropColumns entfernt alle Spalten, für die drop true liefert, und gibt sie zurück.
func (f *Frame) DropColumns(drop func(col string) bool) []string {
	var kept, dropped []string
	for _, c := range f.Columns {
		if drop(c) {
			dropped = append(dropped, c)
			continue
		}
		kept = append(kept, c)
	}
	for _, c := range dropped {
		for _, r := range f.Records {
			delete(r.Values, c)
		}
	}
	f.Columns = kept
	return dropped
}

// parseFlag wandelt einen Flag-Wert in einen Boolean um: 1/0, true/false, numerisch ungleich 0.
func parseFlag(v string) (bool, error) {
	s := strings.TrimSpace(v)
	if b, err := strconv.ParseBool(strings.ToLower(s)); err == nil {
		return b, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f != 0, nil
	}
	return false, fmt.Errorf("not a boolean: %q", v)
}
