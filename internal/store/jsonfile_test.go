package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/journal/internal/domain"
	"github.com/pbaille/journal/internal/logger"
)

func newTestStore(t *testing.T, opts ...Option) *JSONStore {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "reflections.json"), opts...)
}

func ids(t *testing.T, records []json.RawMessage) []string {
	t.Helper()
	out := make([]string, 0, len(records))
	for _, r := range records {
		id, _ := domain.RecordID(r)
		out = append(out, id)
	}
	return out
}

func TestLoad_MissingFile(t *testing.T) {
	s := newTestStore(t)

	records := s.Load()
	assert.NotNil(t, records)
	assert.Empty(t, records)

	_, err := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err), "load must not create the file")
}

func TestLoad_MalformedFileFallsBackToEmpty(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))

	_, err := s.Read()
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Empty(t, s.Load())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	in := []json.RawMessage{
		json.RawMessage(`{"id":"2","title":"日本語のメモ","content":"naïve café <b>&</b>","learnings":["ü"]}`),
		json.RawMessage(`{"id":1,"nested":{"a":[1,2,3]},"flag":true}`),
	}

	require.NoError(t, s.Save(in))

	out, err := s.Read()
	require.NoError(t, err)
	require.Len(t, out, 2)
	for i := range in {
		assert.JSONEq(t, string(in[i]), string(out[i]))
	}

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "日本語のメモ")
	assert.Contains(t, string(data), "<b>&</b>")
	assert.Contains(t, string(data), "\n  {\n    \"id\"")
}

func TestSave_Indent(t *testing.T) {
	s := newTestStore(t, WithIndent(4))
	require.NoError(t, s.Save([]json.RawMessage{json.RawMessage(`{"id":"a"}`)}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "[\n    {\n        \"id\": \"a\"\n    }\n]\n", string(data))
}

func TestSave_NilWritesEmptyArray(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(nil))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestSave_CreatesParentDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nested", "dir", "reflections.json"))
	require.NoError(t, s.Save([]json.RawMessage{json.RawMessage(`{"id":"a"}`)}))
	assert.Len(t, s.Load(), 1)
}

func TestSave_FailureIsReturned(t *testing.T) {
	dir := t.TempDir()
	// the path is a directory, so the write fails
	s := New(dir)
	assert.Error(t, s.Save([]json.RawMessage{json.RawMessage(`{}`)}))
}

func TestPrepend_NewestFirst(t *testing.T) {
	s := newTestStore(t)

	for i := 1; i <= 5; i++ {
		total, err := s.Prepend(json.RawMessage(fmt.Sprintf(`{"id":"%d"}`, i)))
		require.NoError(t, err)
		assert.Equal(t, i, total)
	}

	assert.Equal(t, []string{"5", "4", "3", "2", "1"}, ids(t, s.Load()))
}

func TestPrepend_RejectsNonObjects(t *testing.T) {
	s := newTestStore(t)

	for _, body := range []string{``, `[]`, `"text"`, `42`, `{"broken":`} {
		_, err := s.Prepend(json.RawMessage(body))
		assert.ErrorIs(t, err, ErrNotObject, body)
	}
	assert.Empty(t, s.Load())
}

func TestPrepend_ReplacesMalformedFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("garbage"), 0o644))

	total, err := s.Prepend(json.RawMessage(`{"id":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save([]json.RawMessage{
		json.RawMessage(`{"id":"c"}`),
		json.RawMessage(`{"id":"b"}`),
		json.RawMessage(`{"id":"a"}`),
	}))

	removed, err := s.Delete("b")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"c", "a"}, ids(t, s.Load()))
}

func TestDelete_ComparesAsStrings(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save([]json.RawMessage{
		json.RawMessage(`{"id":123}`),
		json.RawMessage(`{"id":"123"}`),
		json.RawMessage(`{"title":"no id"}`),
	}))

	removed, err := s.Delete("123")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Len(t, s.Load(), 1)
}

func TestDelete_NotFoundLeavesFileUntouched(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save([]json.RawMessage{json.RawMessage(`{"id":"a"}`)}))
	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	_, err = s.Delete("zzz")
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReadRaw(t *testing.T) {
	s := newTestStore(t)

	raw, err := s.ReadRaw()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	require.NoError(t, os.WriteFile(s.Path(), []byte(`[{"id":"x"}]`), 0o644))
	raw, err = s.ReadRaw()
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"x"}]`, string(raw))
}

func TestSave_FailureLogsStack(t *testing.T) {
	var buf bytes.Buffer
	s := New(t.TempDir(), WithLogger(logger.New("journal-test", &buf, "debug")))

	require.Error(t, s.Save([]json.RawMessage{json.RawMessage(`{"id":"1"}`)}))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line), buf.String())
	assert.Equal(t, "saving reflections", line["message"])
	assert.NotEmpty(t, line["error"])
	assert.NotEmpty(t, line["stack"])
}
