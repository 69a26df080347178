package pool

import "testing"

func TestFixedBufferPool(t *testing.T) {
	fp := NewFixedBuffer(4096)

	t.Run("Get returns full-length buffer", func(t *testing.T) {
		b := fp.Get()
		if len(*b) != 4096 || cap(*b) != 4096 {
			t.Errorf("expected len=cap=4096, got len=%d cap=%d", len(*b), cap(*b))
		}
		fp.Put(b)
	})

	t.Run("Resliced buffer is restored on Get", func(t *testing.T) {
		b := fp.Get()
		*b = (*b)[:10]
		fp.Put(b)

		b2 := fp.Get()
		if len(*b2) != 4096 {
			t.Errorf("expected len 4096 after reuse, got %d", len(*b2))
		}
		fp.Put(b2)
	})

	t.Run("Foreign buffers are ignored", func(t *testing.T) {
		foreign := make([]byte, 100)
		fp.Put(&foreign) // must not panic or poison the pool
		fp.Put(nil)

		b := fp.Get()
		if cap(*b) != 4096 {
			t.Errorf("pool returned foreign buffer with cap %d", cap(*b))
		}
	})

	if fp.Size() != 4096 {
		t.Errorf("Size() = %d, want 4096", fp.Size())
	}
}

func TestNewFixedBuffer_InvalidSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero size")
		}
	}()
	NewFixedBuffer(0)
}
