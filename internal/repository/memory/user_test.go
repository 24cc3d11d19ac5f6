package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/sakif/robotics-league/internal/repository"
	"github.com/sakif/robotics-league/internal/repository/repotest"
)

func TestUserStore(t *testing.T) {
	repotest.RunUserRepository(t, func(t *testing.T) repository.UserRepository {
		return NewUserStore()
	})
}

// Run with -race: concurrent inserts must not corrupt the indexes.
func TestUserStore_ConcurrentInsert(t *testing.T) {
	s := NewUserStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := repotest.NewUser(fmt.Sprintf("user%d@example.com", i))
			if err := s.Insert(context.Background(), u); err != nil {
				t.Errorf("Insert() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	n, _ := s.Count(context.Background())
	if n != 50 {
		t.Errorf("Count() = %d, want 50", n)
	}
}
