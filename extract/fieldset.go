// Package extract projects resolved graph nodes onto the flat field-set
// the target CMS expects, applying language filtering, geocoordinate
// projection, and binary attachment handling along the way.
package extract

import "fmt"

// Field is one key/value pair of a field-set, in target-schema terms.
type Field struct {
	Key   string
	Value string
}

// Attachment is a binary payload submitted alongside the form fields,
// keyed by an ordinal form field name.
type Attachment struct {
	Field string
	Name  string
	Data  []byte
}

// FieldSet is an ordered mapping from target-schema field key to value,
// plus any binary attachments. It is built incrementally by the extractor,
// consumed once by the submission pipeline, then discarded.
type FieldSet struct {
	keys   []string
	values map[string]string
	files  []Attachment
}

// NewFieldSet creates an empty field-set.
func NewFieldSet() *FieldSet {
	return &FieldSet{values: make(map[string]string)}
}

// Set records a value under key. A repeated key overwrites the value but
// keeps the key's original position.
func (fs *FieldSet) Set(key, value string) {
	if _, ok := fs.values[key]; !ok {
		fs.keys = append(fs.keys, key)
	}
	fs.values[key] = value
}

// Get returns the value for key and whether it is present.
func (fs *FieldSet) Get(key string) (string, bool) {
	v, ok := fs.values[key]
	return v, ok
}

// Has reports whether key is present.
func (fs *FieldSet) Has(key string) bool {
	_, ok := fs.values[key]
	return ok
}

// Fields returns all fields in insertion order.
func (fs *FieldSet) Fields() []Field {
	out := make([]Field, 0, len(fs.keys))
	for _, k := range fs.keys {
		out = append(out, Field{Key: k, Value: fs.values[k]})
	}
	return out
}

// AddFile appends a binary attachment under the next ordinal key.
func (fs *FieldSet) AddFile(name string, data []byte) {
	fs.files = append(fs.files, Attachment{
		Field: fmt.Sprintf("file[%d]", len(fs.files)),
		Name:  name,
		Data:  data,
	})
}

// Files returns the attachments in the order they were added.
func (fs *FieldSet) Files() []Attachment {
	return fs.files
}
