package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/creativeprojects/mailsync/lib"
	"github.com/creativeprojects/mailsync/mailbox"
	bolt "go.etcd.io/bbolt"
)

const (
	metadataBucket  = "metadata"
	accountsBucket  = "accounts"
	statusKey       = "status"
	versionKey      = "version"
	boltFileVersion = 1
)

// Cache keeps the message headers of each account and mailbox between runs
type Cache struct {
	dbFile string
	db     *bolt.DB
	log    lib.Logger
}

func Open(filename string) (*Cache, error) {
	return OpenWithLogger(filename, nil)
}

func OpenWithLogger(filename string, logger lib.Logger) (*Cache, error) {
	options := bolt.DefaultOptions
	options.Timeout = 10 * time.Second

	err := os.MkdirAll(filepath.Dir(filename), 0700)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q: %w", filename, err)
	}

	db, err := bolt.Open(filename, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q: %w", filename, err)
	}

	cache := &Cache{
		dbFile: filename,
		db:     db,
		log:    lib.OrNoLog(logger),
	}
	if err := cache.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

func (c *Cache) init() error {
	return c.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(metadataBucket))
		if err != nil {
			return err
		}
		if data := bucket.Get([]byte(versionKey)); data != nil {
			version, err := deserializeInt(data)
			if err != nil {
				return err
			}
			if version > boltFileVersion {
				return fmt.Errorf("cache file %q has version %d, expected %d", c.dbFile, version, boltFileVersion)
			}
		}
		version, err := serializeInt(boltFileVersion)
		if err != nil {
			return err
		}
		if err := bucket.Put([]byte(versionKey), version); err != nil {
			return err
		}
		_, err = tx.CreateBucketIfNotExists([]byte(accountsBucket))
		return err
	})
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// SaveHeaders adds or replaces the headers of a mailbox
func (c *Cache) SaveHeaders(accountTag, mailboxName string, headers []mailbox.Header) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		bucket, err := mailboxBucket(tx, accountTag, mailboxName)
		if err != nil {
			return err
		}
		for i := range headers {
			data, err := serializeObject(&headers[i])
			if err != nil {
				return fmt.Errorf("cannot serialize header uid=%d: %w", headers[i].UID, err)
			}
			if err := bucket.Put(headerKey(headers[i].UID), data); err != nil {
				return err
			}
		}
		c.log.Printf("saved %d headers: mailbox=%q", len(headers), mailboxName)
		return nil
	})
}

// LoadHeaders returns the cached headers of a mailbox, highest uid first.
// A mailbox never cached returns no header.
func (c *Cache) LoadHeaders(accountTag, mailboxName string) ([]mailbox.Header, error) {
	headers := make([]mailbox.Header, 0)
	err := c.db.View(func(tx *bolt.Tx) error {
		bucket := findBucket(tx, accountTag, mailboxName)
		if bucket == nil {
			return nil
		}
		cursor := bucket.Cursor()
		for key, value := cursor.Last(); key != nil; key, value = cursor.Prev() {
			if !isHeaderKey(key) {
				continue
			}
			header, err := deserializeObject[mailbox.Header](value)
			if err != nil {
				return fmt.Errorf("cannot read header uid=%d: %w", uidOf(key), err)
			}
			headers = append(headers, *header)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return headers, nil
}

// UIDs returns the uids of the cached headers in ascending order
func (c *Cache) UIDs(accountTag, mailboxName string) ([]uint32, error) {
	uids := make([]uint32, 0)
	err := c.db.View(func(tx *bolt.Tx) error {
		bucket := findBucket(tx, accountTag, mailboxName)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(key, _ []byte) error {
			if isHeaderKey(key) {
				uids = append(uids, uidOf(key))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	return uids, nil
}

func (c *Cache) RemoveHeaders(accountTag, mailboxName string, uids []uint32) error {
	if len(uids) == 0 {
		return nil
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		bucket := findBucket(tx, accountTag, mailboxName)
		if bucket == nil {
			return nil
		}
		for _, uid := range uids {
			if err := bucket.Delete(headerKey(uid)); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveStatus records the mailbox status the cached headers belong to
func (c *Cache) SaveStatus(accountTag, mailboxName string, status mailbox.Status) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		bucket, err := mailboxBucket(tx, accountTag, mailboxName)
		if err != nil {
			return err
		}
		data, err := serializeObject(&status)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(statusKey), data)
	})
}

// LoadStatus returns nil when the mailbox was never synchronized
func (c *Cache) LoadStatus(accountTag, mailboxName string) (*mailbox.Status, error) {
	var status *mailbox.Status
	err := c.db.View(func(tx *bolt.Tx) error {
		bucket := findBucket(tx, accountTag, mailboxName)
		if bucket == nil {
			return nil
		}
		data := bucket.Get([]byte(statusKey))
		if data == nil {
			return nil
		}
		var err error
		status, err = deserializeObject[mailbox.Status](data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// Clear removes the headers and the status of a mailbox
func (c *Cache) Clear(accountTag, mailboxName string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		account := tx.Bucket([]byte(accountsBucket)).Bucket([]byte(accountTag))
		if account == nil || account.Bucket([]byte(mailboxName)) == nil {
			return nil
		}
		return account.DeleteBucket([]byte(mailboxName))
	})
}

// ClearAccount removes everything cached for the account
func (c *Cache) ClearAccount(accountTag string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		accounts := tx.Bucket([]byte(accountsBucket))
		if accounts.Bucket([]byte(accountTag)) == nil {
			return nil
		}
		return accounts.DeleteBucket([]byte(accountTag))
	})
}

// Backup writes a consistent copy of the cache file
func (c *Cache) Backup(filename string) error {
	return c.db.View(func(tx *bolt.Tx) error {
		return tx.CopyFile(filename, 0600)
	})
}

func mailboxBucket(tx *bolt.Tx, accountTag, mailboxName string) (*bolt.Bucket, error) {
	account, err := tx.Bucket([]byte(accountsBucket)).CreateBucketIfNotExists([]byte(accountTag))
	if err != nil {
		return nil, err
	}
	return account.CreateBucketIfNotExists([]byte(mailboxName))
}

func findBucket(tx *bolt.Tx, accountTag, mailboxName string) *bolt.Bucket {
	account := tx.Bucket([]byte(accountsBucket)).Bucket([]byte(accountTag))
	if account == nil {
		return nil
	}
	return account.Bucket([]byte(mailboxName))
}
