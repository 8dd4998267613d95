package model

import "fmt"

// RawNumber holds an unparsed numeric wire field. Upstream recorders emit
// prices and sizes either as JSON strings ("101.5") or bare numbers (101.5);
// both decode to the same textual form here.
type RawNumber string

// UnmarshalJSON accepts a quoted string or a bare JSON number.
func (n *RawNumber) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "null" {
		return fmt.Errorf("numeric field is null")
	}
	*n = RawNumber(s)
	return nil
}

// MarshalJSON renders the value as a quoted string, the same convention the
// rendered snapshot levels use.
func (n RawNumber) MarshalJSON() ([]byte, error) {
	return []byte(`"` + string(n) + `"`), nil
}

func (n RawNumber) String() string {
	return string(n)
}
