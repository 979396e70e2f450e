// Package upload validates attachments before they leave the client and
// encodes them as multipart form data.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// DefaultMaxBytes is the enforced size limit when Limits.MaxBytes is unset.
// It matches the "Max: 10MB" the upload fields advertise.
const DefaultMaxBytes int64 = 10 << 20

var (
	ErrEmpty           = errors.New("upload: file is empty")
	ErrTooLarge        = errors.New("upload: file too large")
	ErrUnsupportedType = errors.New("upload: unsupported file type")
)

const (
	TypeText = "text/plain"
	TypePDF  = "application/pdf"
	TypePNG  = "image/png"
	TypeJPEG = "image/jpeg"
	TypeZIP  = "application/zip"
	TypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	TypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var allowed = map[string]bool{
	TypeText:                       true,
	TypePDF:                        true,
	TypePNG:                        true,
	TypeJPEG:                       true,
	TypeZIP:                        true,
	"application/x-zip-compressed": true,
	TypeXLSX:                       true,
	TypeDOCX:                       true,
}

// byExt covers files that arrive without a declared type.
var byExt = map[string]string{
	".txt":  TypeText,
	".pdf":  TypePDF,
	".png":  TypePNG,
	".jpg":  TypeJPEG,
	".jpeg": TypeJPEG,
	".zip":  TypeZIP,
	".xlsx": TypeXLSX,
	".docx": TypeDOCX,
}

// File is a pending attachment.
type File struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
	Data []byte `json:"data"`
}

// Size returns the payload length in bytes.
func (f File) Size() int64 { return int64(len(f.Data)) }

type Limits struct {
	MaxBytes int64
}

// Max returns the enforced per-file size limit.
func (l Limits) Max() int64 {
	if l.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return l.MaxBytes
}

// DetectType returns the media type used for validation: the declared type
// when present, else the extension, else a content sniff.
func DetectType(f File) string {
	if f.Type != "" {
		if mt, _, err := mime.ParseMediaType(f.Type); err == nil {
			return mt
		}
	}
	if t, ok := byExt[strings.ToLower(filepath.Ext(f.Name))]; ok {
		return t
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(f.Data))
	return mt
}

// Validate checks f against the allowlist and l.
func Validate(f File, l Limits) error {
	if len(f.Data) == 0 {
		return fmt.Errorf("%w: %s", ErrEmpty, f.Name)
	}
	if err := CheckSize(f, l); err != nil {
		return err
	}
	if t := DetectType(f); !allowed[t] {
		return fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, f.Name, t)
	}
	return nil
}

// ValidateAll validates every file and joins the failures.
func ValidateAll(files []File, l Limits) error {
	var errs []error
	for _, f := range files {
		if err := Validate(f, l); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Multipart encodes fields and files as multipart/form-data. Files are sent
// under fileField. It returns the body and its Content-Type.
func Multipart(fields map[string]string, fileField string, files []File) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, "", err
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
			"name":     fileField,
			"filename": filepath.Base(f.Name),
		}))
		h.Set("Content-Type", DetectType(f))
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// CheckSize reports ErrTooLarge when f is over the limit.
func CheckSize(f File, l Limits) error {
	if f.Size() > l.Max() {
		return tooLarge(f.Name, f.Size(), l)
	}
	return nil
}

// ReadFile loads an attachment from disk. Files over the limit are refused
// without being read into memory.
func ReadFile(path string, l Limits) (File, error) {
	name := filepath.Base(path)
	f, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer f.Close()
	if st, err := f.Stat(); err == nil && st.Size() > l.Max() {
		return File{}, tooLarge(name, st.Size(), l)
	}
	// Stat can understate for pipes and special files.
	data, err := io.ReadAll(io.LimitReader(f, l.Max()+1))
	if err != nil {
		return File{}, err
	}
	if int64(len(data)) > l.Max() {
		return File{}, fmt.Errorf("%w: %s exceeds max %s", ErrTooLarge, name, humanize.IBytes(uint64(l.Max())))
	}
	return File{Name: name, Data: data}, nil
}

func tooLarge(name string, size int64, l Limits) error {
	return fmt.Errorf("%w: %s is %s, max %s", ErrTooLarge, name,
		humanize.IBytes(uint64(size)), humanize.IBytes(uint64(l.Max())))
}
