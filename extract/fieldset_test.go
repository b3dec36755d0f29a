package extract

import "testing"

func TestFieldSetOrderAndOverwrite(t *testing.T) {
	fs := NewFieldSet()
	fs.Set("title", "First")
	fs.Set("credits", "Someone")
	fs.Set("title", "Second")

	fields := fs.Fields()
	if len(fields) != 2 {
		t.Fatalf("Fields() returned %d entries, want 2", len(fields))
	}
	if fields[0].Key != "title" || fields[0].Value != "Second" {
		t.Errorf("first field = %+v, want title=Second in original position", fields[0])
	}
	if fields[1].Key != "credits" || fields[1].Value != "Someone" {
		t.Errorf("second field = %+v, want credits=Someone", fields[1])
	}

	if v, ok := fs.Get("title"); !ok || v != "Second" {
		t.Errorf("Get(title) = %q, %v", v, ok)
	}
	if fs.Has("missing") {
		t.Error("Has(missing) should be false")
	}
}

func TestFieldSetFilesOrdinalKeys(t *testing.T) {
	fs := NewFieldSet()
	fs.AddFile("one.jpg", []byte{1})
	fs.AddFile("two.png", []byte{2})

	files := fs.Files()
	if len(files) != 2 {
		t.Fatalf("Files() returned %d attachments, want 2", len(files))
	}
	if files[0].Field != "file[0]" || files[0].Name != "one.jpg" {
		t.Errorf("first attachment = %+v", files[0])
	}
	if files[1].Field != "file[1]" || files[1].Name != "two.png" {
		t.Errorf("second attachment = %+v", files[1])
	}
}
