package mdir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/creativeprojects/mailsync/cfg"
	"github.com/creativeprojects/mailsync/lib"
	"github.com/emersion/go-maildir"
)

const (
	Delimiter = "."
	infoSep   = ":2,"
)

// Store is the root of the local message store
type Store struct {
	root string
	log  lib.Logger
}

// Folder is one mailbox of one account in the local store
type Folder struct {
	dir maildir.Dir
	log lib.Logger
}

// StoredMessage is a message file located in a Folder
type StoredMessage struct {
	UID      uint32
	Flags    []string
	Filename string
}

func New(root string) (*Store, error) {
	return NewWithLogger(root, nil)
}

func NewWithLogger(root string, logger lib.Logger) (*Store, error) {
	if runtime.GOOS == "windows" {
		return nil, fmt.Errorf("maildir: %w", lib.ErrNotSupported)
	}
	err := os.MkdirAll(root, 0700)
	if err != nil {
		return nil, err
	}

	return &Store{
		root: root,
		log:  lib.OrNoLog(logger),
	}, nil
}

func (s *Store) Root() string {
	return s.root
}

// AccountID is the directory name of an account
func AccountID(account cfg.Account) string {
	return lib.AccountTag(account.IMAP.Host, account.Address)
}

// Folder returns the mailbox folder of the account, creating it when needed
func (s *Store) Folder(accountID, mailboxName string) (*Folder, error) {
	name := strings.ReplaceAll(mailboxName, "/", Delimiter)
	dir := maildir.Dir(filepath.Join(s.root, accountID, name))
	if _, err := os.Stat(filepath.Join(string(dir), "cur")); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(string(dir)), 0700); err != nil {
			return nil, err
		}
		if err := dir.Init(); err != nil {
			return nil, fmt.Errorf("cannot create maildir %q: %w", dir, err)
		}
	}
	return &Folder{
		dir: dir,
		log: s.log,
	}, nil
}

// Filename is the file name of a message with its flags
func Filename(uid uint32, flags []string) string {
	return strconv.FormatUint(uint64(uid), 10) + infoSep + EncodeFlags(flags)
}

// ParseFilename returns the uid and the flags of a message file name
func ParseFilename(name string) (uint32, []string, error) {
	key, letters, found := strings.Cut(name, infoSep)
	if !found {
		return 0, nil, fmt.Errorf("invalid message file name %q", name)
	}
	uid, err := strconv.ParseUint(key, 10, 32)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid message file name %q: %w", name, err)
	}
	return uint32(uid), DecodeFlags(letters), nil
}

func (f *Folder) curDir() string {
	return filepath.Join(string(f.dir), "cur")
}

// Find returns the full path of the message file, or an empty string when not found
func (f *Folder) Find(uid uint32) (string, error) {
	entries, err := os.ReadDir(f.curDir())
	if err != nil {
		return "", err
	}
	prefix := strconv.FormatUint(uint64(uid), 10) + ":"
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) {
			return filepath.Join(f.curDir(), entry.Name()), nil
		}
	}
	return "", nil
}

func (f *Folder) Exists(uid uint32) (bool, error) {
	filename, err := f.Find(uid)
	return filename != "", err
}

// Put writes the message, replacing any previous file of the same uid
func (f *Folder) Put(uid uint32, flags []string, raw []byte) error {
	if err := f.Remove(uid); err != nil && !errors.Is(err, lib.ErrMessageNotFound) {
		return err
	}
	return f.write(uid, flags, raw)
}

// PutIfAbsent writes the message only when no file exists for the uid
func (f *Folder) PutIfAbsent(uid uint32, flags []string, raw []byte) (bool, error) {
	exists, err := f.Exists(uid)
	if err != nil {
		return false, err
	}
	if exists {
		f.log.Printf("message uid=%d already stored in %s", uid, f.dir)
		return false, nil
	}
	return true, f.write(uid, flags, raw)
}

// write goes through tmp/ so a reader never sees a partial file in cur/
func (f *Folder) write(uid uint32, flags []string, raw []byte) error {
	name := Filename(uid, flags)
	tmp := filepath.Join(string(f.dir), "tmp", name)
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("cannot write message uid=%d: %w", uid, err)
	}
	if err := os.Rename(tmp, filepath.Join(f.curDir(), name)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("cannot deliver message uid=%d: %w", uid, err)
	}
	f.log.Printf("message saved: folder=%q file=%q size=%d", f.dir, name, len(raw))
	return nil
}

// SetFlags renames the message file with the new flags
func (f *Folder) SetFlags(uid uint32, flags []string) error {
	filename, err := f.Find(uid)
	if err != nil {
		return err
	}
	if filename == "" {
		return fmt.Errorf("uid %d: %w", uid, lib.ErrMessageNotFound)
	}
	target := filepath.Join(f.curDir(), Filename(uid, flags))
	if target == filename {
		return nil
	}
	return os.Rename(filename, target)
}

func (f *Folder) Remove(uid uint32) error {
	filename, err := f.Find(uid)
	if err != nil {
		return err
	}
	if filename == "" {
		return fmt.Errorf("uid %d: %w", uid, lib.ErrMessageNotFound)
	}
	return os.Remove(filename)
}

// Flags of a stored message, read from its file name only
func (f *Folder) Flags(uid uint32) ([]string, error) {
	_, flags, err := f.lookup(uid)
	return flags, err
}

func (f *Folder) lookup(uid uint32) (string, []string, error) {
	filename, err := f.Find(uid)
	if err != nil {
		return "", nil, err
	}
	if filename == "" {
		return "", nil, fmt.Errorf("uid %d: %w", uid, lib.ErrMessageNotFound)
	}
	_, flags, err := ParseFilename(filepath.Base(filename))
	if err != nil {
		return "", nil, err
	}
	return filename, flags, nil
}

// Read returns the content and the flags of a stored message
func (f *Folder) Read(uid uint32) ([]byte, []string, error) {
	filename, flags, err := f.lookup(uid)
	if err != nil {
		return nil, nil, err
	}
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, err
	}
	return raw, flags, nil
}

// List returns all the messages of the folder in uid order. Files not named after a uid are ignored.
func (f *Folder) List() ([]StoredMessage, error) {
	entries, err := os.ReadDir(f.curDir())
	if err != nil {
		return nil, err
	}
	list := make([]StoredMessage, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		uid, flags, err := ParseFilename(entry.Name())
		if err != nil {
			f.log.Printf("ignoring message %q: %s", entry.Name(), err)
			continue
		}
		list = append(list, StoredMessage{
			UID:      uid,
			Flags:    flags,
			Filename: filepath.Join(f.curDir(), entry.Name()),
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UID < list[j].UID })
	return list, nil
}
