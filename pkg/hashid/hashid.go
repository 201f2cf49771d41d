package hashid

import (
	"fmt"
	"strings"

	hashids "github.com/speps/go-hashids/v2"
)

// Type describes one hashid namespace: a display prefix plus a salt so ids
// from different namespaces never collide.
type Type struct {
	prefix string
	h      *hashids.HashID
}

func NewType(prefix, salt string, minLength int) *Type {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = minLength
	h, err := hashids.NewWithData(hd)
	if err != nil {
		panic(err)
	}
	return &Type{prefix: prefix, h: h}
}

func Encode(t *Type, id uint) string {
	s, err := t.h.EncodeInt64([]int64{int64(id)})
	if err != nil {
		// only reachable with a broken alphabet configuration
		panic(err)
	}
	return t.prefix + s
}

func Decode(t *Type, hashID string) (uint, error) {
	if !strings.HasPrefix(hashID, t.prefix) {
		return 0, fmt.Errorf("invalid id %q: missing %q prefix", hashID, t.prefix)
	}
	nums, err := t.h.DecodeInt64WithError(strings.TrimPrefix(hashID, t.prefix))
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", hashID, err)
	}
	if len(nums) != 1 || nums[0] < 0 {
		return 0, fmt.Errorf("invalid id %q", hashID)
	}
	return uint(nums[0]), nil
}
