package storage

import (
	"errors"
	"testing"
)

func TestKV_BasicOperations(t *testing.T) {
	kv, err := OpenKV("")
	if err != nil {
		t.Fatalf("Failed to open memory store: %v", err)
	}
	defer kv.Close()

	key := []byte("snap/x")
	if err := kv.Put(key, []byte("v1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, found, err := kv.Get(key)
	if err != nil || !found || string(got) != "v1" {
		t.Fatalf("Get = %q, %v, %v", got, found, err)
	}

	if _, found, err = kv.Get([]byte("snap/none")); err != nil || found {
		t.Errorf("Get missing = %v, %v", found, err)
	}

	existed, err := kv.Delete(key)
	if err != nil || !existed {
		t.Fatalf("Delete = %v, %v", existed, err)
	}
	existed, err = kv.Delete(key)
	if err != nil || existed {
		t.Errorf("second Delete = %v, %v", existed, err)
	}
}

func TestKV_Scan(t *testing.T) {
	kv, err := OpenKV("")
	if err != nil {
		t.Fatalf("Failed to open memory store: %v", err)
	}
	defer kv.Close()

	for _, k := range []string{"snap/b", "snap/a", "other/c", "snaq"} {
		if err := kv.Put([]byte(k), []byte("v-"+k)); err != nil {
			t.Fatalf("Put %s failed: %v", k, err)
		}
	}

	var keys []string
	err = kv.Scan([]byte("snap/"), func(key, value []byte) error {
		if string(value) != "v-"+string(key) {
			t.Errorf("key %q has value %q", key, value)
		}
		keys = append(keys, string(key))
		return nil
	})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "snap/a" || keys[1] != "snap/b" {
		t.Errorf("Scan keys = %q", keys)
	}

	stop := errors.New("stop")
	calls := 0
	err = kv.Scan([]byte("snap/"), func(key, value []byte) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("Scan stop = %v after %d calls", err, calls)
	}
}

func TestKV_OnDisk(t *testing.T) {
	dir := t.TempDir()
	kv, err := OpenKV(dir)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if kv.Path() != dir {
		t.Errorf("Path = %q, want %q", kv.Path(), dir)
	}
	if err := kv.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	kv, err = OpenKV(dir)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer kv.Close()
	got, found, err := kv.Get([]byte("k"))
	if err != nil || !found || string(got) != "v" {
		t.Fatalf("Reopened Get = %q, %v, %v", got, found, err)
	}
}
