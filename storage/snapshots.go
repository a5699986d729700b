package storage

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/vmerrors"
)

const snapshotPrefix = "snap/"

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("storage: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// record is the stored form of a named machine snapshot.
type record struct {
	Name     string            `cbor:"1,keyasint"`
	SavedAt  int64             `cbor:"2,keyasint"` // unix nanoseconds
	Note     string            `cbor:"3,keyasint,omitempty"`
	Snapshot *intcode.Snapshot `cbor:"4,keyasint"`
	Digest   []byte            `cbor:"5,keyasint"`
}

// Entry summarises a stored snapshot without its memory image.
type Entry struct {
	Name     string
	SavedAt  time.Time
	Note     string
	PC       int64
	Steps    uint64
	Halted   bool
	Blocked  bool
	Capacity int
	Digest   string
}

// SnapshotStore keeps named machine snapshots in LevelDB, CBOR encoded.
type SnapshotStore struct {
	kv *KV
}

// NewSnapshotStore opens the store at path; an empty path keeps it in memory.
func NewSnapshotStore(path string) (*SnapshotStore, error) {
	kv, err := OpenKV(path)
	if err != nil {
		return nil, err
	}
	return &SnapshotStore{kv: kv}, nil
}

func NewMemorySnapshotStore() (*SnapshotStore, error) {
	return NewSnapshotStore("")
}

func snapshotKey(name string) []byte {
	return []byte(snapshotPrefix + name)
}

// Put stores snap under name, replacing any earlier snapshot of that name.
func (s *SnapshotStore) Put(name string, snap *intcode.Snapshot, note string) error {
	if name == "" {
		return fmt.Errorf("snapshot name must not be empty")
	}
	digest := snap.Digest()
	data, err := cborEncMode.Marshal(&record{
		Name:     name,
		SavedAt:  time.Now().UnixNano(),
		Note:     note,
		Snapshot: snap,
		Digest:   digest[:],
	})
	if err != nil {
		return fmt.Errorf("storage: marshal snapshot %q: %w", name, err)
	}
	if err := s.kv.Put(snapshotKey(name), data); err != nil {
		return fmt.Errorf("storage: put snapshot %q: %w", name, err)
	}
	log.Debug(log.StorageModule, "snapshot saved", "name", name, "bytes", len(data), "pc", snap.PC, "steps", snap.Steps)
	return nil
}

func (s *SnapshotStore) load(name string) (*record, error) {
	data, found, err := s.kv.Get(snapshotKey(name))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("snapshot %q: %w", name, vmerrors.ErrDSnapshotNotFound)
	}
	var rec record
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("storage: unmarshal snapshot %q: %w", name, err)
	}
	if rec.Snapshot == nil {
		return nil, fmt.Errorf("snapshot %q has no state: %w", name, vmerrors.ErrDSnapshotCorrupt)
	}
	if d := rec.Snapshot.Digest(); !bytes.Equal(d[:], rec.Digest) {
		return nil, fmt.Errorf("snapshot %q digest %x, stored %x: %w", name, d[:4], rec.Digest, vmerrors.ErrDSnapshotCorrupt)
	}
	return &rec, nil
}

// Get returns the snapshot stored under name.
func (s *SnapshotStore) Get(name string) (*intcode.Snapshot, error) {
	rec, err := s.load(name)
	if err != nil {
		return nil, err
	}
	return rec.Snapshot, nil
}

// List returns every stored snapshot in name order.
func (s *SnapshotStore) List() ([]Entry, error) {
	var entries []Entry
	err := s.kv.Scan([]byte(snapshotPrefix), func(key, value []byte) error {
		var rec record
		if err := cbor.Unmarshal(value, &rec); err != nil {
			return fmt.Errorf("storage: unmarshal %q: %w", strings.TrimPrefix(string(key), snapshotPrefix), err)
		}
		e := Entry{
			Name:    rec.Name,
			SavedAt: time.Unix(0, rec.SavedAt),
			Note:    rec.Note,
			Digest:  hex.EncodeToString(rec.Digest),
		}
		if snap := rec.Snapshot; snap != nil {
			e.PC, e.Steps, e.Halted, e.Blocked = snap.PC, snap.Steps, snap.Halted, snap.Blocked
			e.Capacity = len(snap.Memory)
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete removes the snapshot stored under name.
func (s *SnapshotStore) Delete(name string) error {
	existed, err := s.kv.Delete(snapshotKey(name))
	if err != nil {
		return err
	}
	if !existed {
		return fmt.Errorf("snapshot %q: %w", name, vmerrors.ErrDSnapshotNotFound)
	}
	log.Debug(log.StorageModule, "snapshot deleted", "name", name)
	return nil
}

func (s *SnapshotStore) Close() error {
	return s.kv.Close()
}
