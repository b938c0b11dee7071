package midiwindows

import (
	"sync"
	"testing"
)

func TestInstances(t *testing.T) {
	var r instances[string]
	a := r.add("a")
	b := r.add("b")
	if a == 0 || a == b {
		t.Fatalf("keys %d and %d", a, b)
	}
	if v, ok := r.get(b); !ok || v != "b" {
		t.Fatalf("get(%d) = %q, %v", b, v, ok)
	}

	r.remove(a)
	if _, ok := r.get(a); ok {
		t.Fatal("removed key still resolves")
	}
	if c := r.add("c"); c == a {
		t.Fatal("key reused after remove")
	}
	if _, ok := r.get(0); ok {
		t.Fatal("zero key resolves")
	}
}

func TestInstancesConcurrent(t *testing.T) {
	var r instances[int]
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := r.add(i)
			if v, ok := r.get(id); !ok || v != i {
				t.Errorf("get(%d) = %d, %v", id, v, ok)
			}
			r.remove(id)
		}(i)
	}
	wg.Wait()
}
