package models

import (
	"encoding/json"
	"fmt"
)

// ReleaseType is the stability channel of a file. The bulk feed encodes it as a
// number, the metadata API as a string; both decode to the same value.
type ReleaseType int

const (
	Release ReleaseType = 1
	Beta    ReleaseType = 2
	Alpha   ReleaseType = 3
)

func (r ReleaseType) String() string {
	switch r {
	case Release:
		return "Release"
	case Beta:
		return "Beta"
	default:
		return "Alpha"
	}
}

func (r *ReleaseType) UnmarshalJSON(data []byte) error {
	value, err := decodeNumberOrString(data)
	if err != nil {
		return fmt.Errorf("release type: %w", err)
	}
	switch value {
	case "1", "Release":
		*r = Release
	case "2", "Beta":
		*r = Beta
	default:
		*r = Alpha
	}
	return nil
}

func (r ReleaseType) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(r))
}

// ReqType is the relation between a file and one of its dependencies.
type ReqType int

const (
	Required ReqType = 1
	Optional ReqType = 2
	Embedded ReqType = 3
)

func (r ReqType) String() string {
	switch r {
	case Required:
		return "Required"
	case Optional:
		return "Optional"
	default:
		return "Embedded"
	}
}

func (r *ReqType) UnmarshalJSON(data []byte) error {
	value, err := decodeNumberOrString(data)
	if err != nil {
		return fmt.Errorf("dependency type: %w", err)
	}
	switch value {
	case "1", "Required":
		*r = Required
	case "2", "Optional":
		*r = Optional
	default:
		*r = Embedded
	}
	return nil
}

func (r ReqType) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(r))
}

func decodeNumberOrString(data []byte) (string, error) {
	var number json.Number
	if err := json.Unmarshal(data, &number); err == nil {
		return number.String(), nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return "", fmt.Errorf("expected number or string, got %s", string(data))
	}
	return text, nil
}
