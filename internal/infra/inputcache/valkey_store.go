package inputcache

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/caustin-usgs/lcmap-gaia/internal/domain/chip"
)

// ValkeyStore persists chip inputs in a Valkey-compatible database as msgpack blobs.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "gaia:inputs"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, cx, cy int64) (chip.Inputs, bool, error) {
	cmd := s.client.B().Get().Key(chipKey(s.prefix, cx, cy)).Build()
	payload, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return chip.Inputs{}, false, nil
		}
		return chip.Inputs{}, false, err
	}
	inputs, err := decode(payload)
	if err != nil {
		return chip.Inputs{}, false, err
	}
	return inputs, true, nil
}

func (s *ValkeyStore) Save(ctx context.Context, cx, cy int64, inputs chip.Inputs, ttl time.Duration) error {
	payload, err := encode(inputs)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(chipKey(s.prefix, cx, cy)).Value(valkey.BinaryString(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

var _ Store = (*ValkeyStore)(nil)
