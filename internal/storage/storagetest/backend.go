// Package storagetest holds the behaviour every storage.Backend must share.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/sakif/robotics-league/internal/storage"
)

// Factory returns a fresh, empty backend for one subtest.
type Factory func(t *testing.T) storage.Backend

// RunBackend runs the shared contract against backends from factory.
func RunBackend(t *testing.T, factory Factory) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		b := factory(t)
		v, ok, err := b.Get(ctx, "p1", "cart")
		if err != nil || ok || v != "" {
			t.Errorf("Get() = %q, %v, %v; want \"\", false, nil", v, ok, err)
		}
	})

	t.Run("set then get then overwrite", func(t *testing.T) {
		b := factory(t)
		if err := b.Set(ctx, "p1", "userName", "Ana"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := b.Set(ctx, "p1", "userName", "Ana López"); err != nil {
			t.Fatalf("Set() overwrite error = %v", err)
		}
		v, ok, err := b.Get(ctx, "p1", "userName")
		if err != nil || !ok || v != "Ana López" {
			t.Errorf("Get() = %q, %v, %v; want \"Ana López\", true, nil", v, ok, err)
		}
	})

	t.Run("empty value is present", func(t *testing.T) {
		b := factory(t)
		if err := b.Set(ctx, "p1", "redirectAfterLogin", ""); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		_, ok, err := b.Get(ctx, "p1", "redirectAfterLogin")
		if err != nil || !ok {
			t.Errorf("Get() ok = %v, err = %v; want present", ok, err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		b := factory(t)
		_ = b.Set(ctx, "p1", "cart", "[]")
		if err := b.Delete(ctx, "p1", "cart"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, ok, _ := b.Get(ctx, "p1", "cart"); ok {
			t.Error("key still present after Delete()")
		}
		if err := b.Delete(ctx, "p1", "cart"); err != nil {
			t.Errorf("Delete() of absent key error = %v", err)
		}
	})

	t.Run("namespaces are isolated", func(t *testing.T) {
		b := factory(t)
		_ = b.Set(ctx, "p1", "userLoggedIn", "true")

		if _, ok, _ := b.Get(ctx, "p2", "userLoggedIn"); ok {
			t.Error("key from p1 visible in p2")
		}
		_ = b.Delete(ctx, "p2", "userLoggedIn")
		if _, ok, _ := b.Get(ctx, "p1", "userLoggedIn"); !ok {
			t.Error("Delete() in p2 removed p1's key")
		}
	})

	t.Run("concurrent writers", func(t *testing.T) {
		b := factory(t)
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ns := fmt.Sprintf("p%d", i)
				if err := b.Set(ctx, ns, "userName", ns); err != nil {
					t.Errorf("Set(%s) error = %v", ns, err)
				}
			}(i)
		}
		wg.Wait()

		for i := 0; i < 20; i++ {
			ns := fmt.Sprintf("p%d", i)
			if v, _, _ := b.Get(ctx, ns, "userName"); v != ns {
				t.Errorf("Get(%s) = %q", ns, v)
			}
		}
	})
}
