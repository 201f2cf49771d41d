package idempotency

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_SecondDeliveryIsSeen(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	key := Key("mercadopago", "1001")

	seen, err := s.Seen(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Fatal("first delivery reported as seen")
	}

	seen, err = s.Seen(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Fatal("second delivery not reported as seen")
	}

	// a different delivery id is a different delivery
	seen, _ = s.Seen(context.Background(), Key("mercadopago", "1002"))
	if seen {
		t.Fatal("unrelated delivery reported as seen")
	}
}

func TestMemoryStore_ForgetAllowsReprocessing(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	key := Key("mercadopago", "1001")

	if _, err := s.Seen(context.Background(), key); err != nil {
		t.Fatal(err)
	}
	if err := s.Forget(context.Background(), key); err != nil {
		t.Fatal(err)
	}

	seen, err := s.Seen(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Fatal("forgotten delivery still reported as seen")
	}
}
