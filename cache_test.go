package communityhub

import (
	"errors"
	"testing"
	"time"
)

func TestDocCacheServesWithinTTL(t *testing.T) {
	fetches := 0
	c := newDocCache(func() ([]string, error) {
		fetches++
		return []string{"a"}, nil
	}, time.Hour)

	for i := 0; i < 3; i++ {
		items, err := c.Items()
		if err != nil {
			t.Fatalf("Items: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("%d items, want 1", len(items))
		}
	}
	if fetches != 1 {
		t.Errorf("%d fetches for 3 reads, want 1", fetches)
	}
}

func TestDocCacheInvalidate(t *testing.T) {
	fetches := 0
	c := newDocCache(func() ([]string, error) {
		fetches++
		return nil, nil
	}, time.Hour)

	if _, err := c.Items(); err != nil {
		t.Fatalf("Items: %v", err)
	}
	c.Invalidate()
	if _, err := c.Items(); err != nil {
		t.Fatalf("Items: %v", err)
	}
	if fetches != 2 {
		t.Errorf("%d fetches, want 2 after Invalidate", fetches)
	}
}

func TestDocCacheExpires(t *testing.T) {
	fetches := 0
	c := newDocCache(func() ([]string, error) {
		fetches++
		return []string{"a"}, nil
	}, 10*time.Millisecond)

	c.Items()
	time.Sleep(20 * time.Millisecond)
	c.Items()
	if fetches != 2 {
		t.Errorf("%d fetches, want 2 after TTL expiry", fetches)
	}
}

func TestDocCacheFetchError(t *testing.T) {
	fail := errors.New("backend down")
	c := newDocCache(func() ([]string, error) {
		return nil, fail
	}, time.Hour)

	if _, err := c.Items(); !errors.Is(err, fail) {
		t.Errorf("err = %v, want the fetch error", err)
	}
}
