package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"

	"github.com/golangsnmp/passpersist"
	"github.com/golangsnmp/passpersist/mib"
)

func mustRecord(t *testing.T, key string, typ mib.Type, value any) mib.Record {
	t.Helper()
	rec, err := mib.NewRecordString(key, typ, value)
	require.NoError(t, err)
	return rec
}

func TestWriteAndProvide(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.db")
	require.NoError(t, Write(path, []mib.Record{
		mustRecord(t, "1.3.5", mib.TypeString, "eth0"),
		mustRecord(t, "1.3.1", mib.TypeCounter, 42),
		mustRecord(t, "1.3.2", mib.TypeGauge, 7),
	}))

	tree := mib.NewTree()
	require.NoError(t, Provider(path)(tree))
	tree.Freeze()

	rec, ok := tree.Get(mib.ParseOID("1.3.1"))
	require.True(t, ok)
	assert.Equal(t, mib.TypeCounter, rec.Type())
	assert.Equal(t, "42", fmt.Sprint(rec.Value()))

	var keys []string
	for _, rec := range tree.Ordered() {
		keys = append(keys, rec.Oid().String())
	}
	assert.Equal(t, []string{"1.3.1", "1.3.2", "1.3.5"}, keys)
}

func TestWriteResolvesComputedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.db")
	require.NoError(t, Write(path, []mib.Record{
		mustRecord(t, "1.1", mib.TypeTimeTicks, mib.ValueFunc(func() any { return 12345 })),
	}))

	tree := mib.NewTree()
	require.NoError(t, Provider(path)(tree))
	tree.Freeze()

	rec, ok := tree.Get(mib.ParseOID("1.1"))
	require.True(t, ok)
	assert.Equal(t, "12345", fmt.Sprint(rec.Value()))
}

func TestWriteReplacesPreviousSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.db")
	require.NoError(t, Write(path, []mib.Record{
		mustRecord(t, "1.1", mib.TypeString, "old"),
		mustRecord(t, "1.2", mib.TypeString, "old"),
	}))
	require.NoError(t, Write(path, []mib.Record{
		mustRecord(t, "1.1", mib.TypeString, "new"),
	}))

	tree := mib.NewTree()
	require.NoError(t, Provider(path)(tree))
	tree.Freeze()

	require.Equal(t, 1, tree.Len())
	rec, ok := tree.Get(mib.ParseOID("1.1"))
	require.True(t, ok)
	assert.Equal(t, "new", fmt.Sprint(rec.Value()))
}

func TestProviderMissingFile(t *testing.T) {
	err := Provider(filepath.Join(t.TempDir(), "absent.db"))(mib.NewTree())
	require.Error(t, err)
}

func TestProviderRejectsUnknownType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.db")
	require.NoError(t, Write(path, nil))

	// Corrupt the snapshot with a tag outside the closed type set.
	db, err := bbolt.Open(path, 0o600, nil)
	require.NoError(t, err)
	err = db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketRecords)
		if err != nil {
			return err
		}
		data, err := msgpack.Marshal(entry{Type: "bogus", Value: 1})
		if err != nil {
			return err
		}
		return b.Put([]byte("1.1"), data)
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	err = Provider(path)(mib.NewTree())
	require.ErrorIs(t, err, mib.ErrUnknownType)
}

func TestServeFromSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.db")
	require.NoError(t, Write(path, []mib.Record{
		mustRecord(t, "1.3.6.2", mib.TypeInteger, 2),
		mustRecord(t, "1.3.6.10", mib.TypeInteger, 10),
		mustRecord(t, "1.3.6.1", mib.TypeInteger, 1),
	}))

	var out bytes.Buffer
	err := passpersist.Serve(context.Background(),
		passpersist.WithInput(strings.NewReader("GET\n1.3.6.2\nDUMP\n")),
		passpersist.WithOutput(&out),
		passpersist.WithIdleTimeout(5*time.Second),
		passpersist.WithProvider(Provider(path)),
	)
	require.NoError(t, err)

	want := "1.3.6.2\ninteger\n2\n" +
		"1.3.6.1\ninteger\n1\n" +
		"1.3.6.2\ninteger\n2\n" +
		"1.3.6.10\ninteger\n10\n" +
		".\n"
	assert.Equal(t, want, out.String())
}
