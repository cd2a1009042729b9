package badgerdb

import (
	"bytes"
	"encoding/json"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

func createDB(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          jsonEncode,
		Decoder:          jsonDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}

func jsonEncode(value interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func jsonDecode(data []byte, value interface{}) error {
	return json.NewDecoder(bytes.NewReader(data)).Decode(value)
}
