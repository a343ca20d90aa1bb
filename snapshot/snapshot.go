// Package snapshot persists a record table in a bbolt database so a
// collector process can hand management data to a pass_persist agent
// out-of-band: the collector calls Write on its own schedule, and the
// agent serves whatever the file holds via Provider.
package snapshot

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"

	"github.com/golangsnmp/passpersist"
	"github.com/golangsnmp/passpersist/mib"
)

var bucketRecords = []byte("records")

// entry is the msgpack envelope stored per OID. Only scalar values
// survive persistence; computed values are resolved at write time.
type entry struct {
	Type  string `msgpack:"type"`
	Value any    `msgpack:"value"`
}

// Write replaces the snapshot at path with the given records in a
// single transaction, creating the database if needed.
func Write(path string, records []mib.Record) error {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return fmt.Errorf("open snapshot %s: %w", path, err)
	}
	defer db.Close()

	return db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketRecords) != nil {
			if err := tx.DeleteBucket(bucketRecords); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(bucketRecords)
		if err != nil {
			return err
		}
		for _, rec := range records {
			data, err := msgpack.Marshal(entry{
				Type:  rec.Type().String(),
				Value: rec.Value(),
			})
			if err != nil {
				return fmt.Errorf("encode %s: %w", rec.Oid(), err)
			}
			if err := b.Put([]byte(rec.Oid().String()), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Provider serves the snapshot at path. The database is reopened
// read-only on every invocation, matching the engine's
// fresh-snapshot-per-request lifecycle: the agent always sees the
// collector's latest committed write.
func Provider(path string) passpersist.Provider {
	return func(tree *mib.Tree) error {
		db, err := bbolt.Open(path, 0o600, &bbolt.Options{ReadOnly: true})
		if err != nil {
			return fmt.Errorf("open snapshot %s: %w", path, err)
		}
		defer db.Close()

		return db.View(func(tx *bbolt.Tx) error {
			b := tx.Bucket(bucketRecords)
			if b == nil {
				return nil // nothing collected yet
			}
			return b.ForEach(func(k, v []byte) error {
				var e entry
				if err := msgpack.Unmarshal(v, &e); err != nil {
					return fmt.Errorf("decode %s: %w", k, err)
				}
				typ, err := mib.ParseType(e.Type)
				if err != nil {
					return fmt.Errorf("record %s: %w", k, err)
				}
				rec, err := mib.NewRecordString(string(k), typ, e.Value)
				if err != nil {
					return err
				}
				tree.Push(rec)
				return nil
			})
		})
	}
}
