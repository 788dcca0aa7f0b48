package chip

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/caustin-usgs/lcmap-gaia/internal/domain/landcover"
)

// Format selects the serialization of persisted product collections.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat accepts json or msgpack; empty means json.
func ParseFormat(value string) (Format, error) {
	switch Format(value) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatMsgpack:
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("unsupported product format %q", value)
	}
}

// Extension is the file suffix used in object keys.
func (f Format) Extension() string {
	if f == FormatMsgpack {
		return "msgpack"
	}
	return "json"
}

// MimeType is the content type stored alongside the payload.
func (f Format) MimeType() string {
	if f == FormatMsgpack {
		return "application/msgpack"
	}
	return "application/json"
}

// Encode serializes products with the same field names in both formats.
func (f Format) Encode(products []landcover.Product) ([]byte, error) {
	if f == FormatMsgpack {
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(products); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return json.Marshal(products)
}

// Decode is the inverse of Encode.
func (f Format) Decode(data []byte) ([]landcover.Product, error) {
	var products []landcover.Product
	if f == FormatMsgpack {
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag("json")
		if err := dec.Decode(&products); err != nil {
			return nil, err
		}
		return products, nil
	}
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}
