package cache

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
)

const headerPrefix = "hdr-"

func serializeInt(value int) ([]byte, error) {
	buffer := &bytes.Buffer{}
	encoder := gob.NewEncoder(buffer)
	err := encoder.Encode(value)
	return buffer.Bytes(), err
}

func deserializeInt(input []byte) (int, error) {
	output := 0
	decoder := gob.NewDecoder(bytes.NewBuffer(input))
	err := decoder.Decode(&output)
	return output, err
}

func serializeObject[T any](data *T) ([]byte, error) {
	if data == nil {
		return nil, errors.New("cannot serialize nil object")
	}
	buffer := &bytes.Buffer{}
	encoder := gob.NewEncoder(buffer)
	err := encoder.Encode(data)
	return buffer.Bytes(), err
}

func deserializeObject[T any](input []byte) (*T, error) {
	output := new(T)
	decoder := gob.NewDecoder(bytes.NewBuffer(input))
	err := decoder.Decode(output)
	return output, err
}

// headerKey sorts in uid order
func headerKey(uid uint32) []byte {
	key := make([]byte, len(headerPrefix)+4)
	copy(key, headerPrefix)
	binary.BigEndian.PutUint32(key[len(headerPrefix):], uid)
	return key
}

func isHeaderKey(key []byte) bool {
	return len(key) == len(headerPrefix)+4 && bytes.HasPrefix(key, []byte(headerPrefix))
}

func uidOf(key []byte) uint32 {
	return binary.BigEndian.Uint32(key[len(headerPrefix):])
}
