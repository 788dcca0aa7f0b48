package inputcache

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/caustin-usgs/lcmap-gaia/internal/domain/chip"
)

// Store keeps fetched chip inputs so a re-run chip does not hit the upstream service again.
type Store interface {
	Get(ctx context.Context, cx, cy int64) (chip.Inputs, bool, error)
	Save(ctx context.Context, cx, cy int64, inputs chip.Inputs, ttl time.Duration) error
}

func chipKey(prefix string, cx, cy int64) string {
	return fmt.Sprintf("%s:%d:%d", prefix, cx, cy)
}

func encode(inputs chip.Inputs) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(inputs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(payload []byte) (chip.Inputs, error) {
	var inputs chip.Inputs
	dec := msgpack.NewDecoder(bytes.NewReader(payload))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(&inputs); err != nil {
		return chip.Inputs{}, err
	}
	return inputs, nil
}
