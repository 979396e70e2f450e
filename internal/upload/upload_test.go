package upload

import (
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		file File
		err  error
	}{
		{"pdf by declared type", File{Name: "a.pdf", Type: "application/pdf", Data: []byte("%PDF-1.4")}, nil},
		{"xlsx by extension", File{Name: "stock.XLSX", Data: []byte("PK..")}, nil},
		{"png by sniffing", File{Name: "scan", Data: pngHeader}, nil},
		{"declared type with params", File{Name: "n", Type: "text/plain; charset=utf-8", Data: []byte("hi")}, nil},
		{"zip legacy type", File{Name: "b", Type: "application/x-zip-compressed", Data: []byte("PK")}, nil},
		{"exe rejected", File{Name: "setup.exe", Type: "application/x-msdownload", Data: []byte("MZ")}, ErrUnsupportedType},
		{"gif rejected", File{Name: "a.gif", Data: []byte("GIF89a")}, ErrUnsupportedType},
		{"empty", File{Name: "a.txt"}, ErrEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.file, Limits{})
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestValidate_Size(t *testing.T) {
	f := File{Name: "big.pdf", Type: TypePDF, Data: make([]byte, DefaultMaxBytes+1)}
	err := Validate(f, Limits{})
	require.ErrorIs(t, err, ErrTooLarge)
	assert.Contains(t, err.Error(), "max 10 MiB")

	assert.NoError(t, Validate(f, Limits{MaxBytes: 20 << 20}))

	f.Data = f.Data[:DefaultMaxBytes]
	assert.NoError(t, Validate(f, Limits{}))
}

func TestValidateAll_JoinsErrors(t *testing.T) {
	err := ValidateAll([]File{
		{Name: "ok.txt", Data: []byte("x")},
		{Name: "bad.exe", Type: "application/octet-stream", Data: []byte("MZ")},
		{Name: "empty.pdf"},
	}, Limits{})
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.ErrorIs(t, err, ErrEmpty)
	assert.NoError(t, ValidateAll(nil, Limits{}))
}

func TestMultipart(t *testing.T) {
	body, ctype, err := Multipart(
		map[string]string{"name": "Ada", "roles": "admin,finance"},
		"attachments",
		[]File{{Name: "dir/cv.pdf", Data: []byte("%PDF")}},
	)
	require.NoError(t, err)

	mt, params, err := mime.ParseMediaType(ctype)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mt)

	r := multipart.NewReader(body, params["boundary"])
	form, err := r.ReadForm(1 << 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada"}, form.Value["name"])
	assert.Equal(t, []string{"admin,finance"}, form.Value["roles"])

	require.Len(t, form.File["attachments"], 1)
	fh := form.File["attachments"][0]
	assert.Equal(t, "cv.pdf", fh.Filename)
	assert.Equal(t, TypePDF, fh.Header.Get("Content-Type"))
	f, err := fh.Open()
	require.NoError(t, err)
	data, _ := io.ReadAll(f)
	assert.Equal(t, "%PDF", string(data))
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cv.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o600))

	f, err := ReadFile(path, Limits{})
	require.NoError(t, err)
	assert.Equal(t, "cv.pdf", f.Name)
	assert.Equal(t, "%PDF-1.7", string(f.Data))

	_, err = ReadFile(path, Limits{MaxBytes: 4})
	require.ErrorIs(t, err, ErrTooLarge)
	assert.Contains(t, err.Error(), "cv.pdf is 8 B")

	_, err = ReadFile(filepath.Join(dir, "missing.pdf"), Limits{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
