package sharc

import (
	"math"
	"testing"
)

var hashFunctions = map[string]HashFunction{
	"multiplicative": MultiplicativeHash{},
	"xxhash32":       XXHash32{Seed: 7},
	"xxhash64":       XXHash64{},
	"func":           HashFunc(func(key uint32) uint32 { return key * 2654435761 }),
}

func TestDictionaryInsertLookup(t *testing.T) {
	for name, h := range hashFunctions {
		t.Run(name, func(t *testing.T) {
			d := NewDictionary(h)
			if d.UsedKeys() != 0 || d.MaxKeyLength() != 1 || d.NextCode() != 256 {
				t.Fatalf("new dictionary: used=%d maxLen=%d next=%d", d.UsedKeys(), d.MaxKeyLength(), d.NextCode())
			}

			if !d.Insert('a', 'b') {
				t.Fatal("insert failed")
			}
			if code, ok := d.Lookup('a', 'b'); !ok || code != 256 {
				t.Fatalf("Lookup(a, b) = %d, %v; want 256, true", code, ok)
			}
			if !d.Insert(256, 'c') {
				t.Fatal("insert failed")
			}
			if code, ok := d.Lookup(256, 'c'); !ok || code != 257 {
				t.Fatalf("Lookup(256, c) = %d, %v; want 257, true", code, ok)
			}
			if _, ok := d.Lookup('b', 'a'); ok {
				t.Fatal("found key that was never inserted")
			}

			if got := string(d.AppendSequence(nil, 257)); got != "abc" {
				t.Fatalf("sequence 257 = %q, want %q", got, "abc")
			}
			if d.Len(257) != 3 || d.First(257) != 'a' || d.MaxKeyLength() != 3 || d.UsedKeys() != 2 {
				t.Fatalf("len=%d first=%q maxLen=%d used=%d", d.Len(257), d.First(257), d.MaxKeyLength(), d.UsedKeys())
			}

			d.Reset()
			if _, ok := d.Lookup('a', 'b'); ok {
				t.Fatal("key survived Reset")
			}
			if d.UsedKeys() != 0 || d.MaxKeyLength() != 1 || d.NextCode() != 256 {
				t.Fatalf("after Reset: used=%d maxLen=%d next=%d", d.UsedKeys(), d.MaxKeyLength(), d.NextCode())
			}
		})
	}
}

func TestDictionaryFull(t *testing.T) {
	d := NewDictionary(nil)
	for prefix := 0; !d.Full(); prefix++ {
		for b := 0; b < 256 && !d.Full(); b++ {
			if !d.Insert(uint16(prefix), byte(b)) {
				t.Fatalf("insert %d/%d failed with %d keys used", prefix, b, d.UsedKeys())
			}
		}
	}

	if d.UsedKeys() != d.Capacity() || d.UsedKeys() != DictionaryCapacity {
		t.Fatalf("used %d keys, capacity %d", d.UsedKeys(), d.Capacity())
	}
	if d.Insert(0, 0) {
		t.Fatal("insert into a full dictionary succeeded")
	}
	if d.UsedKeys() != DictionaryCapacity {
		t.Fatalf("failed insert changed used keys to %d", d.UsedKeys())
	}

	// Every key is still found under the code it was given.
	for prefix := 0; prefix < 255; prefix++ {
		for b := 0; b < 256; b++ {
			want := uint16(256 + prefix*256 + b)
			code, ok := d.Lookup(uint16(prefix), byte(b))
			if !ok || code != want {
				t.Fatalf("Lookup(%d, %d) = %d, %v; want %d", prefix, b, code, ok, want)
			}
		}
	}
}

func TestDictionaryGenerationWrap(t *testing.T) {
	d := NewDictionary(nil)
	d.gen = math.MaxUint32
	d.Insert('x', 'y')
	if _, ok := d.Lookup('x', 'y'); !ok {
		t.Fatal("inserted key not found")
	}

	d.Reset()
	if d.gen != 1 {
		t.Fatalf("generation after wrap = %d, want 1", d.gen)
	}
	if _, ok := d.Lookup('x', 'y'); ok {
		t.Fatal("key survived a wrapping Reset")
	}
}

func TestHashByName(t *testing.T) {
	for _, name := range HashNames {
		if _, err := HashByName(name); err != nil {
			t.Errorf("HashByName(%q): %v", name, err)
		}
	}
	if _, err := HashByName("md5"); err == nil {
		t.Error("expected error for unknown hash")
	}
}
