package coin

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const coinsBucketName = "coins"

// DB defines the interface for collection database operations
type DB interface {
	// SaveCoin saves a coin to the database
	SaveCoin(coin *CollectedCoin) error

	// GetCoin retrieves a coin by ID
	GetCoin(id string) (*CollectedCoin, error)

	// ListCoins returns all coins, newest first
	ListCoins() ([]*CollectedCoin, error)

	// DeleteCoin removes a coin from the database
	DeleteCoin(id string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB. Bolt serializes writers
// through its update transactions, so concurrent adds never lose entries the
// way a whole-file JSON rewrite would.
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(coinsBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveCoin saves a coin to the database
func (b *BoltDB) SaveCoin(coin *CollectedCoin) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(coinsBucketName))
		data, err := json.Marshal(coin)
		if err != nil {
			return fmt.Errorf("marshaling coin: %w", err)
		}
		return bucket.Put([]byte(coin.ID), data)
	})
}

// GetCoin retrieves a coin by ID
func (b *BoltDB) GetCoin(id string) (*CollectedCoin, error) {
	var coin *CollectedCoin
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(coinsBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("coin not found: %s", id)
		}
		return json.Unmarshal(data, &coin)
	})
	if err != nil {
		return nil, err
	}
	return coin, nil
}

// ListCoins returns all coins, newest first
func (b *BoltDB) ListCoins() ([]*CollectedCoin, error) {
	coins := make([]*CollectedCoin, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(coinsBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var coin CollectedCoin
			if err := json.Unmarshal(v, &coin); err != nil {
				return fmt.Errorf("unmarshaling coin: %w", err)
			}
			coins = append(coins, &coin)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(coins, func(i, j int) bool {
		return coins[i].AddedAt.After(coins[j].AddedAt)
	})
	return coins, nil
}

// DeleteCoin removes a coin from the database
func (b *BoltDB) DeleteCoin(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(coinsBucketName))
		return bucket.Delete([]byte(id))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
