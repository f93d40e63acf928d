package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/runstatus/pkg/provider"
)

func writeFile(t *testing.T, base, rel, content string) {
	t.Helper()
	full := filepath.Join(base, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestConfig_Validate(t *testing.T) {
	assert.Error(t, Config{}.Validate())
	assert.Error(t, Config{BaseDir: "   "}.Validate())
	assert.NoError(t, Config{BaseDir: "/tmp"}.Validate())
}

func TestProvider_ListPaginates(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "a/1.json", "{}")
	writeFile(t, base, "a/2.json", "{}")
	writeFile(t, base, "b/.hidden.json", "{}")

	p, err := New(Config{BaseDir: base})
	require.NoError(t, err)

	res, err := p.List(context.Background(), provider.ListOptions{MaxKeys: 2})
	require.NoError(t, err)
	require.Len(t, res.Objects, 2)
	assert.True(t, res.IsTruncated)
	assert.Equal(t, "a/1.json", res.Objects[0].Key)

	next, err := p.List(context.Background(), provider.ListOptions{MaxKeys: 2, ContinuationToken: res.ContinuationToken})
	require.NoError(t, err)
	require.Len(t, next.Objects, 1)
	assert.False(t, next.IsTruncated)
	assert.Equal(t, "b/.hidden.json", next.Objects[0].Key)

	all, err := provider.ListAll(context.Background(), p, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProvider_ListPrefix(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "runs/r1/result.json", "{}")
	writeFile(t, base, "runs/r2/result.json", "{}")
	writeFile(t, base, "other/result.json", "{}")

	p, err := New(Config{BaseDir: base})
	require.NoError(t, err)

	objs, err := provider.ListAll(context.Background(), p, "runs/")
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "runs/r1/result.json", objs[0].Key)

	objs, err = provider.ListAll(context.Background(), p, "runs/r2")
	require.NoError(t, err)
	require.Len(t, objs, 1)

	objs, err = provider.ListAll(context.Background(), p, "missing/")
	require.NoError(t, err)
	assert.Empty(t, objs)
}

func TestProvider_GetObject(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "run/__meta/run_info.json", `{"uuid":"x"}`)

	p, err := New(Config{BaseDir: base})
	require.NoError(t, err)

	b, err := provider.ReadAll(context.Background(), p, "run/__meta/run_info.json")
	require.NoError(t, err)
	assert.Equal(t, `{"uuid":"x"}`, string(b))

	_, _, err = p.GetObject(context.Background(), "run/missing.json")
	require.Error(t, err)
	assert.True(t, provider.IsNotFound(err))

	_, _, err = p.GetObject(context.Background(), "run/__meta")
	assert.True(t, provider.IsNotFound(err))
}

func TestProvider_RejectsTraversal(t *testing.T) {
	p, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	_, _, err = p.GetObject(context.Background(), "../../etc/passwd")
	require.Error(t, err)
}
