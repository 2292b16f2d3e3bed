package lifecycle

import (
	"strings"

	"folio/utils"
)

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Form is a decoded multipart submission
type Form struct {
	Values map[string][]string
	Files  map[string]*File
}

func NewForm() *Form {
	return &Form{Values: map[string][]string{}, Files: map[string]*File{}}
}

func (f *Form) Set(key string, values ...string) *Form {
	f.Values[key] = values
	return f
}

func (f *Form) SetFile(key string, file *File) *Form {
	f.Files[key] = file
	return f
}

// Value is the first trimmed value of key
func (f *Form) Value(key string) string {
	if values := f.Values[key]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

func (f *Form) Bool(key string) bool {
	return utils.ParseBool(f.Value(key))
}

func (f *Form) IDs(key string) []uint64 {
	return utils.ParseIDs(f.Values[key])
}

// File returns nil for missing or empty uploads
func (f *Form) File(key string) *File {
	if file := f.Files[key]; file != nil && len(file.Data) > 0 {
		return file
	}
	return nil
}
