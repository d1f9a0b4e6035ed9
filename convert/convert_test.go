package convert

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhcgn/eml-to-html/console"
	"github.com/dhcgn/eml-to-html/extract"
	"github.com/dhcgn/eml-to-html/model"
	"github.com/dhcgn/eml-to-html/stats"
)

const singleHTML = "From: a@example.com\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>hi</p>"

const plainAndHTML = "From: a@example.com\n" +
	"Content-Type: multipart/alternative; boundary=\"sep\"\n" +
	"\n" +
	"--sep\n" +
	"Content-Type: text/plain\n" +
	"\n" +
	"ignored\n" +
	"--sep\n" +
	"Content-Type: text/html\n" +
	"\n" +
	"<b>x</b>\n" +
	"--sep--\n"

type stubParser struct {
	node *model.Node
}

func (s stubParser) Parse(io.Reader) (*model.Node, error) {
	return s.node, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "mail.eml", want: "mail.html"},
		{in: filepath.Join("a", "b", "mail.eml"), want: filepath.Join("a", "b", "mail.html")},
		{in: "archive.tar.eml", want: "archive.tar.html"},
		{in: "notes.txt", want: "notes.html"},
		{in: "noext", want: "noext.html"},
		{in: ".eml", want: ".eml.html"},
		{in: filepath.Join("box", ".eml"), want: filepath.Join("box", ".eml.html")},
		{in: "trailing.", want: "trailing..html"},
		{in: "..eml", want: "..html"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputPath(tt.in))
		})
	}
}

func TestConvertFile_SingleHTMLPart(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "hello.eml", singleHTML)
	rec := &console.Recorder{}

	out, err := New(nil, rec, nil).ConvertFile(in)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "hello.html"), out)
	assert.Equal(t, "<p>hi</p>", readFile(t, out))
	assert.Equal(t, []string{"written hello.html"}, rec.Lines())
}

func TestConvertFile_DropsPlainPart(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "alt.eml", plainAndHTML)

	out, err := New(nil, nil, nil).ConvertFile(in)
	require.NoError(t, err)
	assert.Equal(t, "<b>x</b>", readFile(t, out))
}

func TestConvertFile_OverwritesExistingOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "hello.eml", singleHTML)
	writeFile(t, dir, "hello.html", "stale content that is longer than the new one")

	out, err := New(nil, nil, nil).ConvertFile(in)
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", readFile(t, out))
}

func TestConvertFile_WrongExtensionWarnsButConverts(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "hello.txt", singleHTML)
	rec := &console.Recorder{}

	out, err := New(nil, rec, nil).ConvertFile(in)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "hello.html"), out)
	assert.Equal(t, "<p>hi</p>", readFile(t, out))
	assert.Equal(t, []string{
		"skipping " + in + ": " + ReasonWrongExt,
		"written hello.html",
	}, rec.Lines())
}

func TestConvertFile_MissingInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "missing.eml")
	rec := &console.Recorder{}

	_, err := New(nil, rec, nil).ConvertFile(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist), "got %v", err)
	assert.Equal(t, []string{"skipping " + in + ": " + ReasonNotAFile}, rec.Lines())

	_, statErr := os.Stat(filepath.Join(dir, "missing.html"))
	assert.True(t, errors.Is(statErr, fs.ErrNotExist))
}

func TestConvertFile_TypeMismatchWritesNothing(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "odd.eml", singleHTML)
	bad := &model.Node{ContentType: "text/html", Payload: model.Unsupported{Kind: "bytes"}}

	_, err := New(stubParser{node: bad}, nil, nil).ConvertFile(in)
	require.ErrorIs(t, err, extract.ErrTypeMismatch)

	_, statErr := os.Stat(filepath.Join(dir, "odd.html"))
	assert.True(t, errors.Is(statErr, fs.ErrNotExist))
}

func TestConvertFile_DecodeErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "latin1.eml", "Content-Type: text/html; charset=iso-8859-1\n\n<p>caf\xe9</p>")

	_, err := New(nil, nil, nil).ConvertFile(in)
	require.ErrorIs(t, err, extract.ErrDecode)

	_, statErr := os.Stat(filepath.Join(dir, "latin1.html"))
	assert.True(t, errors.Is(statErr, fs.ErrNotExist))
}

func TestConvertFile_NoHTMLPartsWritesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	raw := "Content-Type: multipart/mixed; boundary=z\n\n--z\nContent-Type: text/plain\n\nonly text\n--z--\n"
	in := writeFile(t, dir, "plain.eml", raw)

	out, err := New(nil, nil, nil).ConvertFile(in)
	require.NoError(t, err)
	assert.Empty(t, readFile(t, out))
}

func TestConvertFile_DirectoryWarnsAndFails(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "box.eml")
	require.NoError(t, os.Mkdir(sub, 0o755))
	rec := &console.Recorder{}

	_, err := New(nil, rec, nil).ConvertFile(sub)
	require.Error(t, err)
	assert.Equal(t, []string{"skipping " + sub + ": " + ReasonNotAFile}, rec.Lines())
}

func TestSuffix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "mail.eml", want: ".eml"},
		{in: filepath.Join("dir.d", "noext"), want: ""},
		{in: ".eml", want: ""},
		{in: "trailing.", want: ""},
		{in: "..eml", want: ".eml"},
		{in: filepath.Join("a", "b.tar.eml"), want: ".eml"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Suffix(tt.in), "Suffix(%q)", tt.in)
	}
}

func TestConvertFile_DotfileGetsWrongExtensionAdvisory(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, ".eml", singleHTML)
	rec := &console.Recorder{}

	out, err := New(nil, rec, nil).ConvertFile(in)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".eml.html"), out)
	assert.Equal(t, "<p>hi</p>", readFile(t, out))
	assert.Equal(t, []string{
		"skipping " + in + ": " + ReasonWrongExt,
		"written .eml.html",
	}, rec.Lines())
}

func TestConvertFile_RecordsOneWarnedEventPerFile(t *testing.T) {
	dir := t.TempDir()
	txt := writeFile(t, dir, "page.txt", singleHTML)
	eml := writeFile(t, dir, "page2.eml", singleHTML)
	missing := filepath.Join(dir, "gone.txt")
	collector := stats.NewCollector()

	c := New(nil, nil, nil)
	c.SetRecorder(collector)

	_, err := c.ConvertFile(txt)
	require.NoError(t, err)
	_, err = c.ConvertFile(eml)
	require.NoError(t, err)
	_, err = c.ConvertFile(missing)
	require.Error(t, err)

	assert.Equal(t, 2, collector.Snapshot().Warned)
}
