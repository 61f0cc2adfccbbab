package cache

import (
	"sync"
	"testing"
	"time"
)

func TestNewMemory(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	if c == nil {
		t.Fatal("NewMemory() returned nil")
	}
	if c.items == nil {
		t.Fatal("NewMemory() returned cache with nil items map")
	}
	if c.ttl != time.Minute {
		t.Errorf("NewMemory() ttl = %v, want %v", c.ttl, time.Minute)
	}
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.Set("key1", "value1")

	got, ok := c.Get("key1")
	if !ok {
		t.Error("Get() returned false for existing key")
	}
	if got != "value1" {
		t.Errorf("Get() = %v, want %v", got, "value1")
	}
}

func TestMemoryCache_Get_NotFound(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	got, ok := c.Get("nonexistent")
	if ok {
		t.Error("Get() should return false for non-existent key")
	}
	if got != nil {
		t.Errorf("Get() should return nil for non-existent key, got %v", got)
	}
}

func TestMemoryCache_Get_Expired(t *testing.T) {
	c := NewMemory(50 * time.Millisecond)
	defer c.Stop()

	c.Set("key1", "value1")

	if _, ok := c.Get("key1"); !ok {
		t.Error("Get() should return true for fresh key")
	}

	time.Sleep(60 * time.Millisecond)

	got, ok := c.Get("key1")
	if ok {
		t.Error("Get() should return false for expired key")
	}
	if got != nil {
		t.Errorf("Get() should return nil for expired key, got %v", got)
	}
}

func TestMemoryCache_SetWithTTL(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.SetWithTTL("key1", "value1", 50*time.Millisecond)

	if _, ok := c.Get("key1"); !ok {
		t.Error("Get() should return true for fresh key")
	}

	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get("key1"); ok {
		t.Error("Get() should return false after custom TTL expired")
	}
}

func TestMemoryCache_SetWithTTL_LongerThanDefault(t *testing.T) {
	c := NewMemory(50 * time.Millisecond)
	defer c.Stop()

	c.SetWithTTL("key1", "value1", time.Minute)

	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get("key1"); !ok {
		t.Error("Get() should return true when custom TTL hasn't expired")
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.Set("key1", "value1")
	c.Delete("key1")

	if _, ok := c.Get("key1"); ok {
		t.Error("Get() should return false after Delete()")
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")

	c.Clear()

	for _, key := range []string{"key1", "key2", "key3"} {
		if _, ok := c.Get(key); ok {
			t.Errorf("Get(%q) should return false after Clear()", key)
		}
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("shared-key", idx*100+j)
			}
		}(i)
	}

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Get("shared-key")
			}
		}()
	}

	wg.Wait()
}

func TestMemoryCache_OverwriteValue(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.Set("key", "value1")
	c.Set("key", "value2")

	got, ok := c.Get("key")
	if !ok {
		t.Error("Get() returned false")
	}
	if got != "value2" {
		t.Errorf("Get() = %v, want %v", got, "value2")
	}
}

func TestMemoryCache_ImplementsInterface(t *testing.T) {
	var _ Cache = (*MemoryCache)(nil)
}
