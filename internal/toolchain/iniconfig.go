package toolchain

import (
	"github.com/go-ini/ini"
)

// iniReader adapts a go-ini/ini file to the ConfigReader interface,
// preserving declaration order (ini.File.Section("").Keys() returns keys
// in the order they were parsed) so accumulating keys concatenate
// correctly.
type iniReader struct {
	file *ini.File
}

// ReadINIFile loads path as a toolchain configuration document: a flat,
// line-oriented key = value file with no sections (spec.md §6).
func ReadINIFile(path string) (ConfigReader, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		AllowNonUniqueSections: false,
		Insensitive:            false,
		AllowShadows:           true,
	}, path)
	if err != nil {
		return nil, err
	}
	return &iniReader{file: f}, nil
}

func (r *iniReader) Pairs() ([]KV, error) {
	var out []KV
	for _, sec := range r.file.Sections() {
		for _, key := range sec.Keys() {
			for _, val := range key.ValueWithShadows() {
				out = append(out, KV{Key: key.Name(), Value: val})
			}
		}
	}
	return out, nil
}
