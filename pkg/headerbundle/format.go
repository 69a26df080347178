package headerbundle

import (
	"encoding/json"
	"fmt"

	"github.com/paulschiretz/pgl-headers/pkg/util"
)

// Format represents the archive format of a bundle.
type Format string

const (
	TarGz  Format = "tar.gz"
	TarZst Format = "tar.zst"
)

var formatToString = map[Format]string{
	TarGz:  "tar.gz",
	TarZst: "tar.zst",
}

var stringToFormat map[string]Format

func init() {
	stringToFormat = util.InvertMap(formatToString)
}

func (f Format) String() string {
	if str, ok := formatToString[f]; ok {
		return str
	}
	return fmt.Sprintf("unknown_bundle_format(%s)", string(f))
}

// ParseFormat parses a string into a Format. Empty selects tar.zst.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return TarZst, nil
	}
	if format, ok := stringToFormat[s]; ok {
		return format, nil
	}
	return "", fmt.Errorf("invalid bundle format: %q. Must be 'tar.gz' or 'tar.zst'", s)
}

// FileName returns the default bundle file name for the format.
func (f Format) FileName() string {
	return "headers." + f.String()
}

// MarshalJSON implements the json.Marshaler interface for Format.
func (f Format) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for Format.
func (f *Format) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("bundle format should be a string, got %s", data)
	}
	format, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = format
	return nil
}
